// Package notifier forwards carousel lifecycle events to a Telegram chat.
// It is optional: with no telegram config the service is inert and every
// method is a safe no-op.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"tabwheel/internal/eventbus"
	logx "tabwheel/pkg/logx"
)

const defaultRatePerSec = 1

// sender abstracts the telebot client for tests.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type Service struct {
	log     logx.Logger
	enabled bool
	chat    tele.ChatID
	bot     sender
	limiter *rate.Limiter

	cancel context.CancelFunc
	unsub  func()
	wg     sync.WaitGroup
}

type Config struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

func New(cfg Config, log logx.Logger) (*Service, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log}
	if !cfg.Enabled {
		return s, nil
	}
	if cfg.Token == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("notifier: telegram enabled but token/chat_id missing")
	}

	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = defaultRatePerSec
	}
	s.enabled = true
	s.chat = tele.ChatID(cfg.ChatID)
	s.bot = bot
	s.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)
	return s, nil
}

// Start subscribes to the bus and forwards events until ctx is done or
// Stop is called. No-op when the service is disabled.
func (s *Service) Start(ctx context.Context, bus eventbus.Bus) {
	if s == nil || !s.enabled {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	events, unsub := bus.Subscribe(32)
	s.unsub = unsub

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				s.forward(e)
			}
		}
	}()
	s.log.Info("telegram notifier started")
}

func (s *Service) Stop() {
	if s == nil || !s.enabled {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.unsub != nil {
		s.unsub()
	}
	s.wg.Wait()
}

func (s *Service) forward(e eventbus.Event) {
	msg := formatEvent(e)
	if msg == "" {
		return
	}
	// Drop rather than queue: a burst of flips must never build a Telegram
	// send backlog.
	if !s.limiter.Allow() {
		s.log.Debug("notice dropped (rate limited)", logx.String("event", e.Type))
		return
	}
	if _, err := s.bot.Send(s.chat, msg); err != nil {
		s.log.Warn("telegram send failed", logx.String("event", e.Type), logx.Err(err))
	}
}

// formatEvent maps bus events to chat notices. Per-tab chatter (flips,
// reloads, skips) is deliberately not forwarded.
func formatEvent(e eventbus.Event) string {
	switch e.Type {
	case eventbus.EventCarouselStarted:
		return fmt.Sprintf("▶ carousel started at %s", e.Time.Format(time.Kitchen))
	case eventbus.EventCarouselStopped:
		return fmt.Sprintf("⏹ carousel stopped at %s", e.Time.Format(time.Kitchen))
	case eventbus.EventTutorialShown:
		if text, ok := e.Data.(string); ok {
			return text
		}
		return ""
	default:
		return ""
	}
}
