// Package riverhttp is the wire adapter contract (C7, §4.7): a one-way
// text-event transport over net/http exposing a start endpoint and a
// resume endpoint for any river.Router.
//
// Framing deliberately diverges from the teacher's own
// internal/server/sse.go, which emits id:/event:/data: frames for a
// Last-Event-ID reconnect protocol. River's resumption is token-based, so
// every frame here is a bare "data: <json>\n\n" line — there is no id to
// track and no event type to discriminate on the wire.
package riverhttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/leonj1/river"
	"github.com/leonj1/river/router"
)

// Server adapts a *router.Router onto HTTP.
type Server struct {
	mux    *http.ServeMux
	router *router.Router
}

// NewServer builds a Server and registers its routes.
func NewServer(rt *router.Router) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		router: rt,
	}
	s.mux.HandleFunc("POST /stream", s.handleStart)
	s.mux.HandleFunc("GET /stream", s.handleResume)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type startRequest struct {
	RouterStreamKey string         `json:"router_stream_key"`
	Input           map[string]any `json:"input"`
}

// handleStart handles POST /stream: {router_stream_key, input}.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.RouterStreamKey == "" {
		writeError(w, http.StatusBadRequest, "router_stream_key is required")
		return
	}

	ctx := river.WithLogWriter(r.Context(), os.Stderr)
	items, rerr := s.router.Start(ctx, req.RouterStreamKey, req.Input, r)
	if rerr != nil {
		writeStatusForError(w, rerr)
		return
	}

	streamItems(w, items)
}

// handleResume handles GET /stream?resumeKey=<token>.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("resumeKey")
	if token == "" {
		writeError(w, http.StatusBadRequest, "resumeKey is required")
		return
	}

	ctx := river.WithLogWriter(r.Context(), os.Stderr)
	items, rerr := s.router.Resume(ctx, token)
	if rerr != nil {
		writeStatusForError(w, rerr)
		return
	}

	streamItems(w, items)
}

// streamItems frames every item from items as a bare "data: <json>\n\n"
// line and flushes after each one, per §4.7.
func streamItems(w http.ResponseWriter, items <-chan river.Item) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for item := range items {
		data, err := river.EncodeItem(item)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return // client disconnected
		}
		flusher.Flush()
	}
}

// writeStatusForError maps a *river.Error's kind to an HTTP status code
// (§7) and writes it as the response body, since these errors always
// occur before the first item — there is no stream to tear down yet.
func writeStatusForError(w http.ResponseWriter, rerr *river.Error) {
	status := http.StatusInternalServerError
	switch rerr.Kind {
	case river.ErrorKindValidation:
		status = http.StatusBadRequest
	case river.ErrorKindInvalidResumptionToken:
		status = http.StatusBadRequest
	case river.ErrorKindStreamNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, rerr.ToMap())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
