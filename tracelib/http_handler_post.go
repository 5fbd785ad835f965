package tracelib

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/qri-io/jsonschema"
)

const httpMaxBodySize = 1 << 20

func mustJSONSchema(data string) *jsonschema.Schema {
	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}

var handlePostTraceJSONSchema = mustJSONSchema(`{
    "type": "object",
    "required": ["lines"],
    "additionalProperties": false,
    "properties": {
        "lines": {
            "type": "array",
            "items": {"type": "string"}
        }
    }
}`)

var handlePostTracesJSONSchema = mustJSONSchema(`{
    "type": "object",
    "required": ["traces"],
    "additionalProperties": false,
    "properties": {
        "traces": {
            "type": "array",
            "minItems": 1,
            "items": {
                "type": "array",
                "items": {"type": "string"}
            }
        }
    }
}`)

type handlePostTraceRequest struct {
	Lines []string `json:"lines"`
}

type handlePostTracesRequest struct {
	Traces [][]string `json:"traces"`
}

type handlePostTracesResponse struct {
	Results []traceResponse `json:"results"`
}

func (h httpHandler) handlePostTrace(w http.ResponseWriter, req *http.Request) {
	bodyBytes, ok := h.readBody(w, req)
	if !ok {
		return
	}

	var lines []string

	switch contentType := req.Header.Get("Content-Type"); {
	case strings.Contains(contentType, "application/json"):
		parsedRequest := &handlePostTraceRequest{}
		if !h.parseJSON(w, req, handlePostTraceJSONSchema, bodyBytes, parsedRequest) {
			return
		}

		lines = parsedRequest.Lines
	case strings.Contains(contentType, "text/plain"):
		parsed, err := SplitLines(bytes.NewReader(bodyBytes))
		if err != nil {
			h.sendError(w, err, "Cannot read trace", http.StatusBadRequest)

			return
		}

		lines = parsed
	default:
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

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
		Origin: h.origin,
		Hops:   hops,
	})
}

func (h httpHandler) handlePostTraces(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, ok := h.readBody(w, req)
	if !ok {
		return
	}

	parsedRequest := &handlePostTracesRequest{}
	if !h.parseJSON(w, req, handlePostTracesJSONSchema, bodyBytes, parsedRequest) {
		return
	}

	resolved, err := h.tracemap.ResolveAll(req.Context(), parsedRequest.Traces)
	if err != nil {
		h.sendError(w, err, "Cannot resolve given traces", http.StatusServiceUnavailable)

		return
	}

	response := handlePostTracesResponse{
		Results: make([]traceResponse, len(resolved)),
	}

	for i, v := range resolved {
		response.Results[i] = traceResponse{
			ID:     uuid.NewString(),
			Origin: h.origin,
			Hops:   v,
		}
	}

	h.encodeJSON(w, response)
}

func (h httpHandler) readBody(w http.ResponseWriter, req *http.Request) ([]byte, bool) {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, req.Body, httpMaxBodySize))

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return nil, false
	}

	return bodyBytes, true
}

func (h httpHandler) parseJSON(w http.ResponseWriter,
	req *http.Request,
	schema *jsonschema.Schema,
	bodyBytes []byte,
	target interface{}) bool {
	errs, err := schema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot validate body", http.StatusBadRequest)

		return false
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return false
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return false
	}

	return true
}
