// Package gateway is the thin JSON shell around the pipeline: route handlers
// translate queue/store calls to HTTP, plus the live event stream.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/agrimesh/fieldops/internal/model"
	"github.com/agrimesh/fieldops/internal/services/broadcast"
	"github.com/agrimesh/fieldops/internal/services/queue"
	"github.com/agrimesh/fieldops/internal/store"
)

const defaultHistoryHours = 24

// Readiness reports whether a background dependency is healthy. Nil checks
// are skipped.
type Readiness func() bool

type Gateway struct {
	store  *store.Store
	queue  *queue.Queue
	hub    *broadcast.Hub
	probes map[string]model.Probe
	ready  []Readiness
}

func New(st *store.Store, q *queue.Queue, hub *broadcast.Hub, probes []model.Probe, ready ...Readiness) *Gateway {
	pm := make(map[string]model.Probe, len(probes))
	for _, p := range probes {
		pm[p.ID] = p
	}
	return &Gateway{store: st, queue: q, hub: hub, probes: pm, ready: ready}
}

// Router builds the HTTP handler with CORS enabled for the dashboard.
func (g *Gateway) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/sensors/latest", g.handleLatest).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors/{probe_id}/history", g.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/commands", g.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/api/commands/history", g.handleCommandHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/status", g.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/events", g.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", g.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return cors.AllowAll().Handler(r)
}

func (g *Gateway) handleLatest(w http.ResponseWriter, _ *http.Request) {
	readings, err := g.store.LatestReadings()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, readings)
}

func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request) {
	probeID := mux.Vars(r)["probe_id"]
	if _, ok := g.probes[probeID]; !ok {
		writeErr(w, store.ErrNotFound)
		return
	}
	hours := defaultHistoryHours
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}
	readings, err := g.store.ReadingHistory(probeID, time.Duration(hours)*time.Hour)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, readings)
}

type submitRequest struct {
	CommandType string       `json:"command_type"`
	Zone        string       `json:"zone"`
	Parameters  model.Params `json:"parameters"`
}

func (g *Gateway) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, queue.ErrValidation)
		return
	}
	cmd, err := g.queue.Submit(req.CommandType, req.Zone, req.Parameters)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"command_id": cmd.CommandID,
		"message":    "Command sent successfully",
	})
}

func (g *Gateway) handleCommandHistory(w http.ResponseWriter, r *http.Request) {
	var status model.CommandStatus
	if v := r.URL.Query().Get("status"); v != "" {
		status = model.CommandStatus(v)
		switch status {
		case model.StatusPending, model.StatusCompleted, model.StatusFailed:
		default:
			writeErr(w, queue.ErrValidation)
			return
		}
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	cmds, err := g.store.CommandHistory(status, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, cmds)
}

func (g *Gateway) handleStatus(w http.ResponseWriter, _ *http.Request) {
	pending, err := g.store.PendingCount()
	if err != nil {
		writeErr(w, err)
		return
	}
	rovers, err := g.store.Rovers()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeData(w, map[string]any{
		"probe_count":           len(g.probes),
		"pending_command_count": pending,
		"rover_count":           len(rovers),
		"rovers":                rovers,
		"subscribers":           g.hub.SubscriberCount(),
		"last_update":           time.Now().UTC().Format(time.RFC3339),
	})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (g *Gateway) handleReady(w http.ResponseWriter, _ *http.Request) {
	for _, check := range g.ready {
		if check != nil && !check() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

// ===== response helpers =====

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, queue.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateID), errors.Is(err, store.ErrTerminal):
		code = http.StatusConflict
	case errors.Is(err, store.ErrUnavailable):
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"success": false, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
