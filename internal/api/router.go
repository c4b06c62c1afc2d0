package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quantex/oms/internal/api/handlers"
	"github.com/quantex/oms/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(wf *handlers.WorkflowHandler, sec *handlers.SecuritiesHandler, hub *Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Reference data
	api.HandleFunc("/securities", sec.List).Methods("GET")
	api.HandleFunc("/securities/{symbol}", sec.Get).Methods("GET")
	api.HandleFunc("/algorithms", sec.Algorithms).Methods("GET")

	// Workflow
	api.HandleFunc("/workflow", wf.GetSnapshot).Methods("GET")
	api.HandleFunc("/workflow/draft", wf.EditDraft).Methods("POST")
	api.HandleFunc("/workflow/prefill", wf.Prefill).Methods("POST")
	api.HandleFunc("/workflow/validate", wf.Validate).Methods("POST")
	api.HandleFunc("/workflow/respond", wf.Respond).Methods("POST")
	api.HandleFunc("/workflow/new", wf.NewOrder).Methods("POST")

	// Snapshot stream
	r.HandleFunc("/ws", hub.Serve).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "oms-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
