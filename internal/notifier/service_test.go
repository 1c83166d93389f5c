package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"tabwheel/internal/eventbus"
	logx "tabwheel/pkg/logx"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return &tele.Message{}, nil
}

func (f *fakeSender) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestDisabledServiceIsInert(t *testing.T) {
	t.Parallel()
	s, err := New(Config{Enabled: false}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bus := eventbus.New()
	s.Start(context.Background(), bus)
	bus.Publish(eventbus.Event{Type: eventbus.EventCarouselStarted})
	s.Stop()
}

func TestEnabledRequiresCredentials(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Enabled: true}, logx.Nop()); err == nil {
		t.Fatal("expected error for missing token/chat_id")
	}
}

func TestForwardsLifecycleEvents(t *testing.T) {
	t.Parallel()
	sink := &fakeSender{}
	s := &Service{
		log:     logx.Nop(),
		enabled: true,
		chat:    tele.ChatID(42),
		bot:     sink,
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	bus := eventbus.New()
	s.Start(context.Background(), bus)
	defer s.Stop()

	bus.Publish(eventbus.Event{Type: eventbus.EventCarouselStarted, Time: time.Now()})
	bus.Publish(eventbus.Event{Type: eventbus.EventTabFlipped}) // per-tab chatter, not forwarded
	bus.Publish(eventbus.Event{Type: eventbus.EventCarouselStopped, Time: time.Now()})

	deadline := time.After(2 * time.Second)
	for {
		if msgs := sink.messages(); len(msgs) >= 2 {
			if len(msgs) != 2 {
				t.Fatalf("sent %d messages, want 2: %v", len(msgs), msgs)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatalf("lifecycle notices not sent: %v", sink.messages())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRateLimitDropsBursts(t *testing.T) {
	t.Parallel()
	sink := &fakeSender{}
	s := &Service{
		log:     logx.Nop(),
		enabled: true,
		chat:    tele.ChatID(42),
		bot:     sink,
		limiter: rate.NewLimiter(rate.Limit(0), 0), // everything throttled
	}
	s.forward(eventbus.Event{Type: eventbus.EventCarouselStarted, Time: time.Now()})
	if got := sink.messages(); len(got) != 0 {
		t.Fatalf("throttled send should drop, got %v", got)
	}
}

func TestFormatEvent(t *testing.T) {
	t.Parallel()
	if got := formatEvent(eventbus.Event{Type: eventbus.EventTickSkipped}); got != "" {
		t.Fatalf("skip events must not notify, got %q", got)
	}
	if got := formatEvent(eventbus.Event{Type: eventbus.EventTutorialShown, Data: "hello"}); got != "hello" {
		t.Fatalf("tutorial text passthrough broken, got %q", got)
	}
}
