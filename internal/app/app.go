// Package app wires the pipeline together: one explicit application context
// constructed at startup and handed to each component, instead of package
// globals. Background loops are supervised: each runs under the shared
// context and is joined on shutdown.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/agrimesh/fieldops/internal/config"
	"github.com/agrimesh/fieldops/internal/model/entities"
	"github.com/agrimesh/fieldops/internal/services/bridge"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/services/dispatch"
	"github.com/agrimesh/fieldops/internal/services/gateway"
	"github.com/agrimesh/fieldops/internal/services/mirror"
	"github.com/agrimesh/fieldops/internal/services/queue"
	"github.com/agrimesh/fieldops/internal/services/telemetry"
	"github.com/agrimesh/fieldops/internal/store"
	"github.com/agrimesh/fieldops/pkg/mqtt"
)

type App struct {
	cfg config.Config

	Store    *store.Store
	Hub      *broadcast.Hub
	Queue    *queue.Queue
	Producer *telemetry.Producer
	Worker   *dispatch.Worker
	Mirror   *mirror.Mirror // nil when the Influx mirror is not configured
	Bridge   *bridge.Bridge // nil when no MQTT broker is configured
	Gateway  *gateway.Gateway

	wg sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := broadcast.NewHub()
	q := queue.New(st, hub)
	probes := entities.DefaultProbes()

	producer := telemetry.NewProducer(telemetry.NewGenerator(0), st, hub, probes, cfg.ProduceInterval)
	pool := dispatch.NewRoverPool(st, entities.DefaultRovers(), cfg.MinExecTime, cfg.MaxExecTime)
	worker := dispatch.NewWorker(st, hub, pool, cfg.PollInterval)

	a := &App{
		cfg:      cfg,
		Store:    st,
		Hub:      hub,
		Queue:    q,
		Producer: producer,
		Worker:   worker,
	}

	influxCfg := mirror.Config{
		URL:         cfg.InfluxURL,
		Token:       cfg.InfluxToken,
		Org:         cfg.InfluxOrg,
		Bucket:      cfg.InfluxBucket,
		Measurement: cfg.Measurement,
	}
	if influxCfg.Enabled() {
		client := influxdb2.NewClient(cfg.InfluxURL, cfg.InfluxToken)
		m, err := mirror.New(client, influxCfg, hub)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("mirror init: %w", err)
		}
		a.Mirror = m
	}

	if cfg.MQTTEnabled {
		client, err := mqtt.NewConn(ctx, &mqtt.Config{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			User:     cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: cfg.MQTTClientID,
		})
		if err != nil {
			// the bridge is optional: run without it rather than refuse to start
			log.Printf("app: mqtt bridge disabled: %v", err)
		} else {
			a.Bridge = bridge.New(hub, mqtt.NewPublisher(client))
		}
	}

	var ready []gateway.Readiness
	if a.Mirror != nil {
		m := a.Mirror
		ready = append(ready, func() bool { return m.LastErrorAge() > time.Minute })
	}
	a.Gateway = gateway.New(st, q, hub, probes, ready...)

	return a, nil
}

// Start launches the background loops. They stop when ctx is cancelled and
// are joined by Shutdown.
func (a *App) Start(ctx context.Context) {
	a.run(ctx, "producer", a.Producer.Start)
	a.run(ctx, "dispatch", a.Worker.Start)
	if a.Mirror != nil {
		a.run(ctx, "mirror", a.Mirror.Start)
	}
	if a.Bridge != nil {
		a.run(ctx, "bridge", a.Bridge.Start)
	}
}

func (a *App) run(ctx context.Context, name string, loop func(context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		log.Printf("app: %s started", name)
		loop(ctx)
		log.Printf("app: %s stopped", name)
	}()
}

// Handler exposes the gateway router.
func (a *App) Handler() http.Handler {
	return a.Gateway.Router()
}

// Shutdown joins the background loops and releases the store.
func (a *App) Shutdown() {
	a.wg.Wait()
	a.Store.Close()
}
