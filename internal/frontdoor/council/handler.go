// Package council is the HTTP frontdoor for council runs: one POST
// endpoint that executes a run (unary JSON or SSE), plus read-only
// endpoints for the participant catalog and per-session spend.
package council

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	councilplan "github.com/argume/council/internal/council"
	"github.com/argume/council/internal/costs"
	"github.com/argume/council/internal/engine"
	"github.com/argume/council/internal/orchestrator"
	"github.com/argume/council/internal/registry"
	"github.com/argume/council/internal/server"
	"github.com/argume/council/internal/storage"
)

// Orchestrator runs one council invocation.
type Orchestrator interface {
	Run(ctx context.Context, req orchestrator.Request, sink engine.Sink) (*orchestrator.Result, error)
}

type Handler struct {
	orch   Orchestrator
	reg    *registry.Registry
	costs  *costs.Accumulator
	store  storage.Store
	logger *slog.Logger
}

func NewHandler(orch Orchestrator, reg *registry.Registry, acc *costs.Accumulator, store storage.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, reg: reg, costs: acc, store: store, logger: logger}
}

// Register mounts the council routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/council", h.HandleRun)
	r.Get("/v1/participants", h.HandleParticipants)
	r.Get("/v1/sessions/{id}/usage", h.HandleUsage)
}

type runRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
	Stream         bool   `json:"stream,omitempty"`
}

func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "message must not be empty")
		return
	}

	orchReq := orchestrator.Request{
		ConversationID: req.ConversationID,
		Message:        req.Message,
	}

	if req.Stream {
		h.handleStream(w, r, orchReq)
		return
	}

	res, err := h.orch.Run(r.Context(), orchReq, nil)
	if err != nil {
		server.AddError(r.Context(), err)
		writeRunError(w, err)
		return
	}
	server.AddLogField(r.Context(), "tier", string(res.Tier))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request, req orchestrator.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The engine invokes the sink from its own goroutines; the channel
	// serializes events so only this handler writes the response. The
	// sink closes over events, which is closed only after Run returns.
	type outcome struct {
		res *orchestrator.Result
		err error
	}
	events := make(chan engine.Event, 64)
	done := make(chan outcome, 1)
	go func() {
		res, err := h.orch.Run(r.Context(), req, func(ev engine.Event) {
			events <- ev
		})
		close(events)
		done <- outcome{res: res, err: err}
	}()

	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	out := <-done
	if out.err != nil {
		server.AddError(r.Context(), out.err)
		data, _ := json.Marshal(errorBody("server_error", out.err.Error()))
		fmt.Fprintf(w, "data: %s\n\n", data)
	} else {
		data, err := json.Marshal(out.res)
		if err == nil {
			fmt.Fprintf(w, "event: result\ndata: %s\n\n", data)
		}
	}
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *Handler) HandleParticipants(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"participants": h.reg.All(),
	})
}

func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, ok := h.costs.Session(id)

	runs, err := h.store.ListRuns(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		server.AddError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "server_error", "failed to load runs")
		return
	}
	if !ok && len(runs) == 0 {
		writeError(w, http.StatusNotFound, "not_found_error", "unknown session")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session": stats,
		"runs":    runs,
	})
}

// writeRunError maps orchestration failures to HTTP statuses. A council
// that cannot be composed is a deployment problem, not a client one.
func writeRunError(w http.ResponseWriter, err error) {
	var compErr *councilplan.CompositionError
	switch {
	case errors.As(err, &compErr):
		writeError(w, http.StatusServiceUnavailable, "composition_error", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody(errType, message))
}

func errorBody(errType, message string) map[string]any {
	return map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	}
}
