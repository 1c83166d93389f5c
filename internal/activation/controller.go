// Package activation turns a user trigger into carousel start/stop, and
// owns the one-time tutorial shown on the very first trigger.
package activation

import (
	"context"
	"errors"
	"time"

	"tabwheel/internal/carousel"
	"tabwheel/internal/eventbus"
	"tabwheel/internal/prefs"
	logx "tabwheel/pkg/logx"
)

type Controller struct {
	log   logx.Logger
	prefs *prefs.Prefs
	wheel *carousel.Scheduler
	bus   eventbus.Bus
}

func New(p *prefs.Prefs, wheel *carousel.Scheduler, bus eventbus.Bus, log logx.Logger) *Controller {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Controller{log: log, prefs: p, wheel: wheel, bus: bus}
}

// Toggle handles one trigger: show the tutorial if this is the first-ever
// trigger (independent of the start/stop outcome), then flip the carousel.
func (c *Controller) Toggle(ctx context.Context) error {
	if _, seen := c.prefs.FirstRun(ctx); !seen {
		c.showTutorial(ctx)
	}

	if c.wheel.Running() {
		c.wheel.Stop(ctx)
		return nil
	}
	return c.wheel.Start(ctx, 0)
}

// AutoStart starts the carousel at daemon boot when the auto-start
// preference is set. It does not count as a trigger: no tutorial.
func (c *Controller) AutoStart(ctx context.Context) error {
	if !c.prefs.AutoStart(ctx) {
		return nil
	}
	err := c.wheel.Start(ctx, 0)
	if errors.Is(err, carousel.ErrAlreadyRunning) {
		return nil
	}
	return err
}

func (c *Controller) showTutorial(ctx context.Context) {
	now := time.Now()
	if err := c.prefs.MarkFirstRun(ctx, now); err != nil {
		c.log.Warn("first-run marker write failed", logx.Err(err))
	}
	c.log.Info("first trigger; showing tutorial")
	c.bus.Publish(eventbus.Event{Type: eventbus.EventTutorialShown, Time: now, Data: TutorialText})
}
