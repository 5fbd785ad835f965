package tracelib

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type traceResponse struct {
	ID     string        `json:"id"`
	Target string        `json:"target,omitempty"`
	Origin *OriginHop    `json:"origin,omitempty"`
	Hops   []ResolvedHop `json:"hops"`
}

func (h httpHandler) handleGetTrace(w http.ResponseWriter, req *http.Request) {
	if h.prober == nil {
		h.sendError(w, nil, "Probing is disabled", http.StatusNotImplemented)

		return
	}

	target := strings.TrimSpace(req.URL.Query().Get("target"))
	if target == "" {
		h.sendError(w, nil, "Target is required", http.StatusBadRequest)

		return
	}

	lines, err := h.prober.Probe(req.Context(), target)

	switch {
	case errors.Is(err, ErrInvalidTarget), errors.Is(err, ErrUnroutableTarget):
		h.sendError(w, err, "Cannot trace this target", http.StatusUnprocessableEntity)

		return
	case err != nil:
		h.sendError(w, err, "Cannot trace a route", http.StatusInternalServerError)

		return
	}

	id := uuid.NewString()

	hops, err := h.tracemap.Resolve(WithTraceID(req.Context(), id), lines)
	if err != nil {
		h.sendError(w, err, "Cannot resolve hops", http.StatusServiceUnavailable)

		return
	}

	h.encodeJSON(w, traceResponse{
		ID:     id,
		Target: target,
		Origin: h.origin,
		Hops:   hops,
	})
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results []*UsageStats `json:"results"`
	}{
		Results: h.tracemap.UsageStats(),
	}

	h.encodeJSON(w, response)
}
