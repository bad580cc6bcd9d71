package bridge

import (
	"sync"
	"testing"
	"time"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/entities"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
)

type recordedPublish struct {
	topic string
	qos   byte
}

type fakePublisher struct {
	mu        sync.Mutex
	published []recordedPublish
}

func (f *fakePublisher) PublishMessage(topic string, payload string) error {
	return f.PublishMessageQos(topic, 0, false, payload)
}

func (f *fakePublisher) PublishMessageQos(topic string, qos byte, _ bool, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, recordedPublish{topic: topic, qos: qos})
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) all() []recordedPublish {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedPublish(nil), f.published...)
}

func TestForwardRoutesEventsToTopics(t *testing.T) {
	pub := &fakePublisher{}
	b := New(broadcast.NewHub(), pub)

	b.forward(messages.NewReadingEvent(model.Reading{ProbeID: "Probe_1", Timestamp: time.Now()}))
	b.forward(messages.NewCommandSubmittedEvent(model.Command{CommandID: "c1", CommandType: "irrigation", Zone: "Z1"}))
	b.forward(messages.NewCommandResultEvent(messages.CommandResultEvent{
		CommandID: "c1",
		Status:    entities.StatusCompleted,
		Result:    "done",
	}))

	got := pub.all()
	if len(got) != 3 {
		t.Fatalf("published %d messages, want 3", len(got))
	}
	want := []recordedPublish{
		{topic: "telemetry/reading/Probe_1", qos: 0},
		{topic: "event/command/c1", qos: 0},
		{topic: "event/command/c1", qos: 1},
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("publish %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestForwardIgnoresMalformedPayloads(t *testing.T) {
	pub := &fakePublisher{}
	b := New(broadcast.NewHub(), pub)

	b.forward(model.Event{Type: messages.EventReading, Payload: "not a reading"})
	if n := len(pub.all()); n != 0 {
		t.Errorf("published %d messages for a malformed payload, want 0", n)
	}
}
