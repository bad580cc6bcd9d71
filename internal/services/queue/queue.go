// Package queue is the admission side of the command pipeline: a logical
// view over the store that assigns IDs and publishes submission events. The
// selection side lives in the dispatch worker.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agrimesh/fieldops/internal/metrics"
	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/model/messages"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/store"
)

// ErrValidation indicates a malformed submit payload (missing required
// field).
var ErrValidation = errors.New("validation failed")

type Queue struct {
	store *store.Store
	hub   *broadcast.Hub
}

func New(st *store.Store, hub *broadcast.Hub) *Queue {
	return &Queue{store: st, hub: hub}
}

// Submit admits a command with a fresh unique ID and status pending.
// command_type and zone are required; parameters are caller-opaque and not
// validated against any schema — unknown command types are accepted and will
// still reach a terminal state (the queue stays generic).
func (q *Queue) Submit(commandType, zone string, params model.Params) (model.Command, error) {
	if strings.TrimSpace(commandType) == "" {
		return model.Command{}, fmt.Errorf("%w: command_type is required", ErrValidation)
	}
	if strings.TrimSpace(zone) == "" {
		return model.Command{}, fmt.Errorf("%w: zone is required", ErrValidation)
	}
	if params == nil {
		params = model.Params{}
	}

	cmd := model.Command{
		CommandID:   uuid.New().String(),
		CommandType: commandType,
		Zone:        zone,
		Parameters:  params,
		Status:      model.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	if err := q.store.SubmitCommand(cmd); err != nil {
		return model.Command{}, err
	}
	metrics.CommandsSubmitted.Inc()
	q.hub.Publish(messages.NewCommandSubmittedEvent(cmd))
	return cmd, nil
}
