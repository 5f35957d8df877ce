package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/store"
)

const (
	defaultCalculationsLimit = 10
	maxCalculationsLimit     = 100
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeText writes a plain text response.
func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

// controlHandler serves the start/stop/reset controls and state views.
type controlHandler struct {
	ctrl Controller
	log  zerolog.Logger
}

func (h *controlHandler) start(w http.ResponseWriter, r *http.Request) {
	h.ctrl.SetEnabled(true)
	writeText(w, "Started")
}

func (h *controlHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.ctrl.SetEnabled(false)
	writeText(w, "Stopped")
}

func (h *controlHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Reset()
	writeText(w, "Reset")
}

func (h *controlHandler) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.History())
}

// stateResponse is the calculator snapshot plus the processing toggles.
type stateResponse struct {
	calculator.State
	Enabled   bool `json:"enabled"`
	Streaming bool `json:"streaming"`
}

func snapshot(c Controller) stateResponse {
	return stateResponse{
		State:     c.State(),
		Enabled:   c.IsEnabled(),
		Streaming: c.IsStreaming(),
	}
}

func (h *controlHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshot(h.ctrl))
}

// calculationsHandler lists persisted calculations.
type calculationsHandler struct {
	store *store.Store
}

func newCalculationsHandler(s *store.Store) *calculationsHandler {
	return &calculationsHandler{store: s}
}

type calculationResponse struct {
	ID          string   `json:"id"`
	OperandA    int      `json:"operand_a"`
	Operator    string   `json:"operator"`
	OperandB    int      `json:"operand_b"`
	Result      string   `json:"result"`
	ResultValue *float64 `json:"result_value"`
	IsError     bool     `json:"is_error"`
	CreatedAt   string   `json:"created_at"`
}

type calculationListResponse struct {
	Calculations []calculationResponse `json:"calculations"`
	Total        int                   `json:"total"`
}

func toCalculationResponse(c *store.Calculation) calculationResponse {
	return calculationResponse{
		ID:          c.ID,
		OperandA:    c.OperandA,
		Operator:    c.Operator,
		OperandB:    c.OperandB,
		Result:      c.Result,
		ResultValue: c.ResultValue,
		IsError:     c.IsError,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (h *calculationsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultCalculationsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxCalculationsLimit)
	}

	calcs, err := h.store.Calculations().Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list calculations")
		return
	}

	total, err := h.store.Calculations().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count calculations")
		return
	}

	resp := calculationListResponse{
		Calculations: make([]calculationResponse, len(calcs)),
		Total:        total,
	}
	for i, c := range calcs {
		resp.Calculations[i] = toCalculationResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}
