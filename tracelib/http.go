package tracelib

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// HTTPHandlerOpts configures HTTP API of tracemap.
type HTTPHandlerOpts struct {
	// Prober is required for GET /trace. If it is nil, this endpoint
	// responds with 501.
	Prober Prober

	// Origin is reported in every trace response as a start point of
	// the route.
	Origin *OriginHop

	// CORSOrigins is a list of allowed origins. Empty list allows
	// everything.
	CORSOrigins []string
}

type httpHandler struct {
	tracemap *Tracemap
	prober   Prober
	origin   *OriginHop
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Add("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	json.NewEncoder(w).Encode(e) // nolint: errcheck
}

// NewHTTPHandler returns HTTP API for the given Tracemap:
//
//	GET  /trace?target=example.com  probe a target and resolve hops
//	POST /trace                     resolve a trace from the body
//	POST /traces                    resolve several traces at once
//	GET  /stats                     usage stats of providers
func NewHTTPHandler(tracemap *Tracemap, opts HTTPHandlerOpts) http.Handler {
	handler := httpHandler{
		tracemap: tracemap,
		prober:   opts.Prober,
		origin:   opts.Origin,
	}

	corsOrigins := opts.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/trace", handler.handleGetTrace)
	router.Post("/trace", handler.handlePostTrace)
	router.Post("/traces", handler.handlePostTraces)
	router.Get("/stats", handler.handleGetStats)

	return router
}
