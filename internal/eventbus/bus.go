// Package eventbus is the in-process fanout the carousel publishes its
// lifecycle on. Publish never blocks: a subscriber whose buffer is full
// misses the event.
package eventbus

import (
	"sync"
	"time"
)

// Event names published by the carousel engine.
const (
	EventCarouselStarted = "carousel.started"
	EventCarouselStopped = "carousel.stopped"
	EventTabFlipped      = "tab.flipped"
	EventTabReloaded     = "tab.reloaded"
	EventTickSkipped     = "tick.skipped"
	EventTutorialShown   = "tutorial.shown"
)

// Event is a small in-process notification. Time is stamped at publish
// when the producer leaves it zero.
type Event struct {
	Type string
	Time time.Time
	Data any
}

type Bus interface {
	Publish(e Event)
	Subscribe(buffer int) (ch <-chan Event, unsubscribe func())
}

// New returns an in-memory bus with no background goroutines.
func New() Bus {
	return &fanout{}
}

type subscriber struct {
	id uint64
	ch chan Event
}

type fanout struct {
	mu   sync.Mutex
	subs []subscriber
	next uint64
}

func (b *fanout) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	// Snapshot under the lock, send outside it.
	b.mu.Lock()
	targets := make([]chan Event, len(b.subs))
	for i, s := range b.subs {
		targets[i] = s.ch
	}
	b.mu.Unlock()

	for _, ch := range targets {
		deliver(ch, e)
	}
}

// deliver is non-blocking and tolerates a channel that a concurrent
// Unsubscribe closed between the snapshot and the send.
func deliver(ch chan Event, e Event) {
	defer func() { _ = recover() }()
	select {
	case ch <- e:
	default:
	}
}

func (b *fanout) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscriber{id: id, ch: ch})
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsub
}
