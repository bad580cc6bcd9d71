package telemetry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/entities"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/store"
)

// faultySource fails for the configured probe and delegates otherwise.
type faultySource struct {
	inner  Source
	failID string
}

func (f *faultySource) Next(p model.Probe) (model.Reading, error) {
	if p.ID == f.failID {
		return model.Reading{}, errors.New("sensor offline")
	}
	return f.inner.Next(p)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestTickProducesOneReadingPerProbe(t *testing.T) {
	st := openTestStore(t)
	hub := broadcast.NewHub()
	probes := entities.DefaultProbes()

	sub := hub.Subscribe(32)
	defer sub.Close()

	p := NewProducer(NewGenerator(1), st, hub, probes, time.Second)
	p.Tick()

	latest, err := st.LatestReadings()
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(latest) != len(probes) {
		t.Fatalf("stored %d readings, want %d", len(latest), len(probes))
	}

	for i := 0; i < len(probes); i++ {
		select {
		case evt := <-sub.Events():
			if evt.Type != messages.EventReading {
				t.Errorf("event type = %s, want reading", evt.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing reading event %d", i)
		}
	}
}

func TestTickIsolatesPerProbeFailures(t *testing.T) {
	st := openTestStore(t)
	hub := broadcast.NewHub()
	probes := entities.DefaultProbes()

	src := &faultySource{inner: NewGenerator(1), failID: probes[0].ID}
	p := NewProducer(src, st, hub, probes, time.Second)
	p.Tick()

	latest, err := st.LatestReadings()
	if err != nil {
		t.Fatalf("LatestReadings: %v", err)
	}
	if len(latest) != len(probes)-1 {
		t.Fatalf("one probe fault must not block the others: stored %d, want %d", len(latest), len(probes)-1)
	}
	for _, r := range latest {
		if r.ProbeID == probes[0].ID {
			t.Errorf("failed probe %s must not have a stored reading", probes[0].ID)
		}
	}

	// the next tick still produces for every healthy probe
	p.Tick()
	hist, err := st.ReadingHistory(probes[1].ID, time.Hour)
	if err != nil {
		t.Fatalf("ReadingHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Errorf("expected 2 readings after 2 ticks, got %d", len(hist))
	}
}
