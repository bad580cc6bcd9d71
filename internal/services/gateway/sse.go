package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleEvents streams hub events over SSE. Each connection gets its own
// bounded subscription; disconnecting releases it, and a slow client only
// loses its own events.
func (g *Gateway) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := g.hub.Subscribe(100)
	defer sub.Close()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case evt := <-sub.Events():
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload)
			flusher.Flush()
		}
	}
}
