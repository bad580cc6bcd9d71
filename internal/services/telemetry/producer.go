// Package telemetry runs the periodic producer: one reading per known probe
// per tick, written through the store and then fanned out to subscribers.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/agrimesh/fieldops/internal/metrics"
	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/store"
)

type Producer struct {
	source   Source
	store    *store.Store
	hub      *broadcast.Hub
	probes   []model.Probe
	interval time.Duration
}

func NewProducer(src Source, st *store.Store, hub *broadcast.Hub, probes []model.Probe, interval time.Duration) *Producer {
	return &Producer{
		source:   src,
		store:    st,
		hub:      hub,
		probes:   probes,
		interval: interval,
	}
}

// Start runs the produce loop until ctx is cancelled. A failure for one
// probe in one tick never blocks production for other probes or future
// ticks.
func (p *Producer) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick produces one reading per probe. Exported so tests and the server
// startup can force an immediate cycle.
func (p *Producer) Tick() {
	for _, probe := range p.probes {
		r, err := p.source.Next(probe)
		if err != nil {
			log.Printf("producer: generate %s: %v", probe.ID, err)
			metrics.ReadingErrors.WithLabelValues(probe.ID).Inc()
			continue
		}
		if err := p.store.PutReading(r); err != nil {
			log.Printf("producer: store %s: %v", probe.ID, err)
			metrics.ReadingErrors.WithLabelValues(probe.ID).Inc()
			continue
		}
		metrics.ReadingsProduced.WithLabelValues(probe.ID).Inc()
		p.hub.Publish(messages.NewReadingEvent(r))
	}
}
