// Package dispatch runs the single worker that claims pending commands,
// executes them against the rover pool and drives each one to a terminal
// state.
package dispatch

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

// Worker polls the store for pending commands in FIFO order. The claim is
// non-destructive, so a store fault between claim and update simply leaves
// the command pending for the next poll. Exactly one Worker must run per
// store; a multi-worker deployment would need a compare-and-swap lease.
type Worker struct {
	store    *store.Store
	hub      *broadcast.Hub
	actuator Actuator
	interval time.Duration
}

func NewWorker(st *store.Store, hub *broadcast.Hub, act Actuator, interval time.Duration) *Worker {
	return &Worker{
		store:    st,
		hub:      hub,
		actuator: act,
		interval: interval,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain claims and executes every currently pending command, oldest first.
// Completion of one command never depends on another: a fault terminates
// that command as failed and the loop moves on. Exported so tests and the
// poll loop share one path.
func (w *Worker) Drain(ctx context.Context) {
	cmds, err := w.store.PendingCommands()
	if err != nil {
		log.Printf("dispatch: claim: %v", err)
		return
	}
	for _, cmd := range cmds {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.process(ctx, cmd)
	}
}

func (w *Worker) process(ctx context.Context, cmd model.Command) {
	log.Printf("dispatch: executing %s (%s in %s)", cmd.CommandID, cmd.CommandType, cmd.Zone)

	status := model.StatusCompleted
	result, roverID, err := w.actuator.Execute(ctx, cmd)
	if err != nil {
		// an execution fault is terminal and never retried
		status = model.StatusFailed
		result = err.Error()
	}

	if err := w.store.UpdateCommandStatus(cmd.CommandID, status, result); err != nil {
		// left pending; the next poll retries the whole command
		log.Printf("dispatch: update %s: %v", cmd.CommandID, err)
		return
	}
	metrics.CommandsExecuted.WithLabelValues(string(status)).Inc()

	// publish only after the status update is durable
	w.hub.Publish(messages.NewCommandResultEvent(messages.CommandResultEvent{
		CommandID:   cmd.CommandID,
		CommandType: cmd.CommandType,
		Zone:        cmd.Zone,
		Status:      status,
		Result:      result,
		RoverID:     roverID,
		ExecutedAt:  time.Now().UTC(),
	}))
}
