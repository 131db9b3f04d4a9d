package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

const maxBodyBytes = 1 << 20

type expenseRequest struct {
	ID       string `json:"id"`
	Payer    string `json:"payer"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Note     string `json:"note"`
	TS       int64  `json:"ts"` // epoch milliseconds, 0 means now
}

type budgetRequest struct {
	ID           string `json:"id"`
	Category     string `json:"category"`
	MonthlyLimit string `json:"monthly_limit"`
	Currency     string `json:"currency"`
	RolloverMode string `json:"rollover_mode"`
	RolloverCap  string `json:"rollover_cap"`
}

type fxRateRequest struct {
	Code    string `json:"code"`
	PerBase string `json:"per_base"`
}

type ruleRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
}

type goalRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Target   string `json:"target"`
	Currency string `json:"currency"`
	DueTS    int64  `json:"due_ts"` // epoch milliseconds, 0 means no deadline
}

type templateRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Period   string `json:"period"`
	Day      int    `json:"day"`
	Weekday  int    `json:"weekday"`
	Month    int    `json:"month"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Category string `json:"category"`
	Note     string `json:"note"`
	Active   bool   `json:"active"`
}

type idResponse struct {
	ID string `json:"id"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// writeError maps service failures to status codes: validation errors
// from core are the caller's fault, missing rows are 404.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case isValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrMissingPayer, core.ErrMissingAmount, core.ErrMissingCategory,
		core.ErrMissingLimit, core.ErrMissingCode, core.ErrMissingRate,
		core.ErrMissingName, core.ErrMissingPattern, core.ErrMissingTarget,
		core.ErrMissingCurrency, core.ErrInvalidPeriod,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (s *Server) handleSaveExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ts := time.Now()
	if req.TS != 0 {
		ts = time.UnixMilli(req.TS)
	}

	id, err := s.writes.SaveExpense(r.Context(), core.Expense{
		ID:        req.ID,
		Payer:     req.Payer,
		Category:  req.Category,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Note:      req.Note,
		Timestamp: ts,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.writes.SaveBudget(r.Context(), core.Budget{
		ID:           req.ID,
		Category:     req.Category,
		MonthlyLimit: req.MonthlyLimit,
		Currency:     req.Currency,
		RolloverMode: core.RolloverMode(req.RolloverMode),
		RolloverCap:  req.RolloverCap,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveFxRate(w http.ResponseWriter, r *http.Request) {
	var req fxRateRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	code, err := s.writes.SaveFxRate(r.Context(), core.FxRate{
		Code:    req.Code,
		PerBase: req.PerBase,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: code})
}

func (s *Server) handleDeleteFxRate(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteFxRate(r.Context(), r.PathValue("code")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefreshFx(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.RefreshFxRates(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "FX refresh failed", "error", err)
		http.Error(w, "fx refresh unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSaveRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.writes.SaveRule(r.Context(), core.Rule{
		ID:       req.ID,
		Name:     req.Name,
		Kind:     core.RuleKind(req.Kind),
		Pattern:  req.Pattern,
		Category: req.Category,
		Active:   req.Active,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteRule(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	goal := core.Goal{
		ID:       req.ID,
		Name:     req.Name,
		Target:   req.Target,
		Currency: req.Currency,
	}
	if req.DueTS != 0 {
		goal.Due = time.UnixMilli(req.DueTS)
	}

	id, err := s.writes.SaveGoal(r.Context(), goal)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeBody(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.writes.SaveTemplate(r.Context(), core.RecurringTemplate{
		ID:       req.ID,
		Name:     req.Name,
		Period:   core.Period(req.Period),
		Day:      req.Day,
		Weekday:  req.Weekday,
		Month:    req.Month,
		Amount:   req.Amount,
		Currency: req.Currency,
		Category: req.Category,
		Note:     req.Note,
		Active:   req.Active,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, idResponse{ID: id})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.writes.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
