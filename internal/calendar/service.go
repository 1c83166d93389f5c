// Package calendar starts and stops the carousel on cron schedules, for
// signage-style deployments where the wheel should only spin during
// certain hours.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"tabwheel/internal/carousel"
	"tabwheel/internal/config"
	logx "tabwheel/pkg/logx"
)

// Toggler is the subset of the carousel scheduler the calendar drives.
type Toggler interface {
	Start(ctx context.Context, every time.Duration) error
	Stop(ctx context.Context)
}

type Service struct {
	log   logx.Logger
	cfg   config.CalendarConfig
	wheel Toggler
	cron  *cron.Cron
}

func New(cfg *config.CalendarConfig, wheel Toggler, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{log: log, wheel: wheel}
	if cfg != nil {
		s.cfg = *cfg
	}
	return s
}

// Start registers the configured windows and starts the cron runner.
// A bad schedule expression is a config error and fails startup.
func (s *Service) Start(ctx context.Context) error {
	if !s.cfg.Enabled || (len(s.cfg.Start) == 0 && len(s.cfg.Stop) == 0) {
		return nil
	}

	loc := time.Local
	if s.cfg.Timezone != "" {
		l, err := time.LoadLocation(s.cfg.Timezone)
		if err != nil {
			return fmt.Errorf("calendar: timezone %q: %w", s.cfg.Timezone, err)
		}
		loc = l
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(loc))

	for _, spec := range s.cfg.Start {
		spec := spec
		if _, err := c.AddFunc(spec, func() {
			err := s.wheel.Start(ctx, 0)
			switch {
			case err == nil:
				s.log.Info("calendar started carousel", logx.String("schedule", spec))
			case errors.Is(err, carousel.ErrAlreadyRunning):
				// already spinning; nothing to do
			default:
				s.log.Warn("calendar start failed", logx.String("schedule", spec), logx.Err(err))
			}
		}); err != nil {
			return fmt.Errorf("calendar: start schedule %q: %w", spec, err)
		}
	}
	for _, spec := range s.cfg.Stop {
		spec := spec
		if _, err := c.AddFunc(spec, func() {
			s.wheel.Stop(ctx)
			s.log.Info("calendar stopped carousel", logx.String("schedule", spec))
		}); err != nil {
			return fmt.Errorf("calendar: stop schedule %q: %w", spec, err)
		}
	}

	c.Start()
	s.cron = c
	s.log.Info("calendar schedules active",
		logx.Int("start", len(s.cfg.Start)),
		logx.Int("stop", len(s.cfg.Stop)),
		logx.String("timezone", loc.String()))
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}
