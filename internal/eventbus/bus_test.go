package eventbus

import (
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	t.Parallel()
	b := New()
	events, unsub := b.Subscribe(4)
	defer unsub()

	b.Publish(Event{Type: EventTabFlipped, Data: 7})

	select {
	case e := <-events:
		if e.Type != EventTabFlipped {
			t.Fatalf("Type = %q, want %q", e.Type, EventTabFlipped)
		}
		if e.Data != 7 {
			t.Fatalf("Data = %v, want 7", e.Data)
		}
		if e.Time.IsZero() {
			t.Fatal("publish must stamp a zero Time")
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestFullBufferDropsNotBlocks(t *testing.T) {
	t.Parallel()
	b := New()
	events, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: EventTabFlipped})
	b.Publish(Event{Type: EventTabReloaded})
	b.Publish(Event{Type: EventTickSkipped})

	if e := <-events; e.Type != EventTabFlipped {
		t.Fatalf("kept event = %q, want the first one", e.Type)
	}
	select {
	case e := <-events:
		t.Fatalf("overflow events must be dropped, got %q", e.Type)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	b := New()
	events, unsub := b.Subscribe(1)

	unsub()
	if _, ok := <-events; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	// Publishing afterwards must not panic, and unsubscribe is idempotent.
	b.Publish(Event{Type: EventCarouselStopped})
	unsub()
}

func TestSubscribersAreIndependent(t *testing.T) {
	t.Parallel()
	b := New()
	first, unsub1 := b.Subscribe(2)
	second, unsub2 := b.Subscribe(2)
	defer unsub2()

	unsub1()
	b.Publish(Event{Type: EventCarouselStarted})

	select {
	case e := <-second:
		if e.Type != EventCarouselStarted {
			t.Fatalf("Type = %q", e.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber missed the event")
	}
	if _, ok := <-first; ok {
		t.Fatal("unsubscribed channel should be drained and closed")
	}
}
