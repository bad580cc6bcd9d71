// Package mirror tees stored readings into InfluxDB for long-term
// time-series analysis. The mirror is strictly off the core path: it feeds
// from the broadcast hub, and a slow or unreachable Influx never blocks the
// producer or the store.
package mirror

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/sony/gobreaker"

	"github.com/agrimesh/fieldops/internal/metrics"
	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
)

type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// Enabled reports whether the config is complete enough to start a mirror.
func (c Config) Enabled() bool {
	return c.URL != "" && c.Token != "" && c.Org != "" && c.Bucket != ""
}

// Mirror consumes reading events and writes one point per reading. Writes go
// through a circuit breaker: after repeated failures the breaker opens and
// points are dropped until Influx recovers.
type Mirror struct {
	hub         *broadcast.Hub
	writeAPI    api.WriteAPIBlocking
	breaker     *gobreaker.CircuitBreaker
	measurement string

	mu      sync.RWMutex
	lastErr time.Time
}

func New(client influxdb2.Client, cfg Config, hub *broadcast.Hub) (*Mirror, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("influx config incomplete")
	}
	measurement := cfg.Measurement
	if measurement == "" {
		measurement = "probe_reading"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "influx-mirror",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Mirror{
		hub:         hub,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		breaker:     cb,
		measurement: measurement,
		lastErr:     time.Now().Add(-24 * time.Hour),
	}, nil
}

// Start consumes the hub until ctx is cancelled.
func (m *Mirror) Start(ctx context.Context) {
	sub := m.hub.Subscribe(256)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub.Events():
			if evt.Type != messages.EventReading {
				continue
			}
			r, ok := evt.Payload.(model.Reading)
			if !ok {
				continue
			}
			m.write(ctx, r)
		}
	}
}

func (m *Mirror) write(ctx context.Context, r model.Reading) {
	point := influxdb2.NewPoint(
		m.measurement,
		map[string]string{"probe_id": r.ProbeID},
		map[string]any{
			"nitrogen":        r.Nitrogen,
			"phosphorus":      r.Phosphorus,
			"potassium":       r.Potassium,
			"ph":              r.PH,
			"humidity":        r.Humidity,
			"temperature":     r.Temperature,
			"soil_moisture":   r.SoilMoisture,
			"fertility_index": r.FertilityIndex,
		},
		r.Timestamp,
	)

	_, err := m.breaker.Execute(func() (any, error) {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return nil, m.writeAPI.WritePoint(wctx, point)
	})
	if err != nil {
		m.mu.Lock()
		m.lastErr = time.Now()
		m.mu.Unlock()
		metrics.MirrorWrites.WithLabelValues("error").Inc()
		log.Printf("mirror: write %s: %v", r.ProbeID, err)
		return
	}
	metrics.MirrorWrites.WithLabelValues("ok").Inc()
}

// LastErrorAge returns how long the mirror has been free of write errors.
// Used by the readiness endpoint.
func (m *Mirror) LastErrorAge() time.Duration {
	m.mu.RLock()
	t := m.lastErr
	m.mu.RUnlock()
	return time.Since(t)
}
