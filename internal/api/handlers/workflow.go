package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quantex/oms/internal/order"
	"github.com/quantex/oms/internal/workflow"
	"github.com/quantex/oms/pkg/logger"
)

// WorkflowHandler exposes engine operations over HTTP.
type WorkflowHandler struct {
	engine *workflow.Engine
	logger *logger.Logger
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(engine *workflow.Engine, log *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{engine: engine, logger: log}
}

// GetSnapshot returns the current workflow state
// GET /api/workflow
func (h *WorkflowHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// draftEdit carries one or more draft field edits. Only present fields
// are applied, in declaration order.
type draftEdit struct {
	Security        *string  `json:"security"`
	Quantity        *string  `json:"quantity"`
	LimitPrice      *float64 `json:"limit_price"`
	ClearLimitPrice bool     `json:"clear_limit_price"`
	TimeInForce     *string  `json:"time_in_force"`
	GTDDate         *string  `json:"gtd_date"` // 2006-01-02
	ContactMethod   *string  `json:"contact_method"`
	Instructions    *string  `json:"instructions"`
}

// EditDraft applies draft field edits
// POST /api/workflow/draft
func (h *WorkflowHandler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var edit draftEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	apply := func(err error) bool {
		if err == nil {
			return true
		}
		respondError(w, statusFor(err), err.Error())
		return false
	}

	if edit.Security != nil && !apply(h.engine.SetSecurity(*edit.Security)) {
		return
	}
	if edit.Quantity != nil && !apply(h.engine.SetQuantity(*edit.Quantity)) {
		return
	}
	if edit.ClearLimitPrice {
		if !apply(h.engine.SetLimitPrice(nil)) {
			return
		}
	} else if edit.LimitPrice != nil && !apply(h.engine.SetLimitPrice(edit.LimitPrice)) {
		return
	}
	if edit.TimeInForce != nil && !apply(h.engine.SetTimeInForce(order.ParseTimeInForce(*edit.TimeInForce))) {
		return
	}
	if edit.GTDDate != nil {
		date, err := time.Parse("2006-01-02", *edit.GTDDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "gtd_date must be YYYY-MM-DD")
			return
		}
		if !apply(h.engine.SetGTDDate(&date)) {
			return
		}
	}
	if edit.ContactMethod != nil && !apply(h.engine.SetContactMethod(order.ContactMethod(*edit.ContactMethod))) {
		return
	}
	if edit.Instructions != nil && !apply(h.engine.SetInstructions(*edit.Instructions)) {
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

type textBody struct {
	Text string `json:"text"`
}

// Prefill seeds the draft from a natural-language order sentence
// POST /api/workflow/prefill
func (h *WorkflowHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	var body textBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := h.engine.PrefillFromText(r.Context(), body.Text); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Validate triggers order validation
// POST /api/workflow/validate
func (h *WorkflowHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.SubmitForValidation(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// suggestionResponse is the operator's answer to a pending suggestion.
type suggestionResponse struct {
	Action string `json:"action"` // accept_gtd, reject_gtd, select_algorithm, accept_algorithm, reject_algorithm
	AlgoID string `json:"algo_id,omitempty"`
}

// Respond resolves a pending HITL suggestion
// POST /api/workflow/respond
func (h *WorkflowHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var body suggestionResponse
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	switch body.Action {
	case "accept_gtd":
		err = h.engine.AcceptConvertToGTD()
	case "reject_gtd":
		err = h.engine.RejectConvertToGTD()
	case "select_algorithm":
		err = h.engine.SelectAlgorithm(body.AlgoID)
	case "accept_algorithm":
		err = h.engine.AcceptAlgorithm()
	case "reject_algorithm":
		err = h.engine.RejectAlgorithm()
	default:
		respondError(w, http.StatusBadRequest, "Unknown action "+body.Action)
		return
	}

	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// NewOrder resets the session to a fresh draft
// POST /api/workflow/new
func (h *WorkflowHandler) NewOrder(w http.ResponseWriter, r *http.Request) {
	h.engine.NewOrder()
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrUnknownSecurity),
		errors.Is(err, workflow.ErrUnknownAlgorithm):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrOrderInFlight),
		errors.Is(err, workflow.ErrSuggestionPending),
		errors.Is(err, workflow.ErrNoSuggestion),
		errors.Is(err, workflow.ErrWrongSuggestion),
		errors.Is(err, workflow.ErrAlgoConfirmed):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
