package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairlane/careerfair/internal/stream"
)

// pingInterval is how often a comment-style keepalive is written so proxies
// do not reap idle stream connections.
const pingInterval = 25 * time.Second

// StreamHandler serves the live review feed over Server-Sent Events.
type StreamHandler struct {
	hub    *stream.Hub
	logger *slog.Logger
}

// NewStreamHandler creates a new SSE stream handler.
func NewStreamHandler(hub *stream.Hub, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeHTTP handles GET /api/v1/reviews/stream. The optional q parameter
// filters pushed reviews by company name or major. Clients receive review
// JSON as default events, periodic ping events, and a terminal error event
// if the change feed dies.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query().Get("q")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hub.Subscribe(query)
	defer h.hub.Unsubscribe(sub)

	h.logger.DebugContext(r.Context(), "stream subscriber connected",
		slog.String("query", query),
	)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: %d\n\n", time.Now().Unix())
			flusher.Flush()

		case ev, open := <-sub.C():
			if !open {
				// Hub failed and already delivered the terminal event,
				// or tore us down as a slow consumer.
				return
			}
			if ev.Err != nil {
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", sseData(map[string]string{"message": "change feed unavailable"}))
				flusher.Flush()
				return
			}

			fmt.Fprintf(w, "data: %s\n\n", sseData(ev.Review))
			flusher.Flush()
		}
	}
}

func sseData(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return data
}
