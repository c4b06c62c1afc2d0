// Package resolversvc is a development stand-in for the collaborator-
// owned resolver service. It serves the same request/response contract
// backed by the deterministic local resolver, so the system runs
// end-to-end without the real service.
package resolversvc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/pkg/logger"
)

// Service implements the resolver endpoints over the local resolver.
type Service struct {
	local  *resolution.Local
	logger *logger.Logger
}

// New creates the stand-in service.
func New(store *refdata.Store, log *logger.Logger) *Service {
	return &Service{
		local:  resolution.NewLocal(store),
		logger: log,
	}
}

// Router builds the HTTP router for the service contract.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.Root).Methods("GET")
	r.HandleFunc("/parse-trader-text", s.ParseTraderText).Methods("POST")
	r.HandleFunc("/autocomplete", s.Autocomplete).Methods("POST")
	r.HandleFunc("/parse-order", s.ParseOrder).Methods("POST")

	return r
}

// Root is the liveness probe
// GET /
func (s *Service) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":   "resolver",
		"status":    "operational",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type textRequest struct {
	Text string `json:"text"`
}

// ParseTraderText resolves instruction text
// POST /parse-trader-text
func (s *Service) ParseTraderText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	res := s.local.Resolve(req.Text)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"structured":     res.Structured,
		"backend_format": res.Directive,
		"description":    res.Description,
		"algo":           res.Algo,
		"parameters":     res.Parameters,
		"confidence":     res.Confidence,
	})
}

// Autocomplete returns candidate completions, best first
// POST /autocomplete
func (s *Service) Autocomplete(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	suggestions := []string{}
	if s := s.local.SuggestCompletion(req.Text); s != "" {
		suggestions = append(suggestions, s)
	}

	writeJSON(w, http.StatusOK, suggestions)
}

// ParseOrder extracts structured order fields from free text
// POST /parse-order
func (s *Service) ParseOrder(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	writeJSON(w, http.StatusOK, s.local.ParseOrder(req.Text))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
