package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kozaktomas/photo-memories/internal/constants"
)

// isJobTerminal returns true if the job status is a terminal state
func isJobTerminal(status JobStatus) bool {
	return status == JobStatusCompleted || status == JobStatusFailed || status == JobStatusCancelled
}

// startSSE switches the response to an event stream. On failure it writes an
// error response and returns false.
func startSSE(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher, true
}

// streamSSEEvents sends initial as a "status" event, then relays job events
// until the job reaches a terminal state, the client disconnects or the
// listener is closed. Idle streams get a comment line every heartbeat
// interval so proxies keep the connection open.
func streamSSEEvents(w http.ResponseWriter, r *http.Request, job SSEJob, initial any) {
	flusher, ok := startSSE(w)
	if !ok {
		return
	}

	eventCh := job.AddListener()
	defer job.RemoveListener(eventCh)

	sendSSEEvent(w, flusher, "status", initial)
	if isJobTerminal(job.GetStatus()) {
		return
	}

	heartbeat := time.NewTicker(constants.SSEHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-eventCh:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event)
			if isJobTerminal(job.GetStatus()) {
				return
			}
		}
	}
}

// sendSSEEvent writes a single SSE event with a JSON payload and flushes it.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte(`{"type":"job_error","message":"failed to encode event"}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	flusher.Flush()
}
