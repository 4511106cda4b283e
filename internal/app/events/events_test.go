package events

import (
	"sync"
	"testing"
	"time"
)

func TestPublishAndRecent(t *testing.T) {
	hub := NewHub(4)

	for i := 0; i < 6; i++ {
		hub.Publish(Event{Type: TypeProjectBought, ProjectID: "p1", Tokens: int64(i)})
	}

	if hub.Count() != 4 {
		t.Fatalf("ring should cap at 4, got %d", hub.Count())
	}

	recent := hub.Recent(10)
	if len(recent) != 4 {
		t.Fatalf("expected 4 recent events, got %d", len(recent))
	}
	if recent[0].Tokens != 5 || recent[3].Tokens != 2 {
		t.Fatalf("events not in reverse chronological order: %+v", recent)
	}
	for _, e := range recent {
		if e.ID == "" || e.Timestamp.IsZero() {
			t.Fatalf("event not stamped: %+v", e)
		}
	}
}

func TestSubscribeReceives(t *testing.T) {
	hub := NewHub(16)
	ch, unsubscribe := hub.Subscribe(8)
	defer unsubscribe()

	hub.Publish(Event{Type: TypeProjectCreated, ProjectID: "p1"})

	select {
	case e := <-ch:
		if e.Type != TypeProjectCreated {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(16)
	ch, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(Event{Type: TypeProjectSold, ProjectID: "p1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if len(ch) != 1 {
		t.Fatalf("expected exactly the buffered event, got %d", len(ch))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(16)
	ch, unsubscribe := hub.Subscribe(1)
	unsubscribe()
	unsubscribe() // safe to call twice

	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	hub.Publish(Event{Type: TypeOfferFilled, ProjectID: "p1"})
}

func TestUnsubscribeRacesPublish(t *testing.T) {
	hub := NewHub(16)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				hub.Publish(Event{Type: TypeProjectBought, ProjectID: "p1"})
			}
		}
	}()

	// Subscribers come and go while the publisher runs. A send on a
	// channel closed by unsubscribe would panic the publisher goroutine.
	for i := 0; i < 500; i++ {
		ch, unsubscribe := hub.Subscribe(1)
		_ = ch
		unsubscribe()
	}

	close(stop)
	wg.Wait()
}
