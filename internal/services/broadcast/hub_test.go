package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
)

func testEvent(i int) model.Event {
	return model.Event{Type: messages.EventReading, Payload: i, Timestamp: time.Now()}
}

func TestPublishWithZeroSubscribers(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 1000; i++ {
		hub.Publish(testEvent(i))
	}
	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d, want 0", n)
	}
	if d := hub.Dropped(); d != 0 {
		t.Errorf("events must not be queued or dropped for absent subscribers, dropped = %d", d)
	}
}

func TestSubscriberReceivesEvents(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(10)
	defer sub.Close()

	hub.Publish(testEvent(1))
	hub.Publish(testEvent(2))

	for want := 1; want <= 2; want++ {
		select {
		case evt := <-sub.Events():
			if evt.Payload.(int) != want {
				t.Errorf("got payload %v, want %d", evt.Payload, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	hub := NewHub()
	hub.Publish(testEvent(1))

	sub := hub.Subscribe(10)
	defer sub.Close()

	select {
	case evt := <-sub.Events():
		t.Errorf("late subscriber must not receive replayed event %v", evt.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDropsWithoutBlocking(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe(1)
	defer slow.Close()
	fast := hub.Subscribe(10)
	defer fast.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(testEvent(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if d := hub.Dropped(); d != 4 {
		t.Errorf("dropped = %d, want 4 (slow subscriber buffer of 1)", d)
	}

	// the fast subscriber saw everything
	for i := 0; i < 5; i++ {
		select {
		case <-fast.Events():
		case <-time.After(time.Second):
			t.Fatalf("fast subscriber missed event %d", i)
		}
	}
}

func TestCloseIsIdempotentAndSafeMidPublish(t *testing.T) {
	hub := NewHub()

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
				hub.Publish(testEvent(0))
			}
		}
	}()

	for i := 0; i < 100; i++ {
		sub := hub.Subscribe(1)
		sub.Close()
		sub.Close() // double close must be safe
		select {
		case <-sub.Done():
		default:
			t.Fatal("Done() not closed after Close()")
		}
	}

	close(stop)
	wg.Wait()

	if n := hub.SubscriberCount(); n != 0 {
		t.Errorf("SubscriberCount = %d after all closes, want 0", n)
	}
}
