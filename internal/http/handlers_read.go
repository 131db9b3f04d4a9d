package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReady reports ready once the first snapshot has been loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.holder.Version() == 0 {
		http.Error(w, "snapshot not loaded yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// display resolves the display currency from the query, falling back
// to the configured default.
func (s *Server) display(r *http.Request) string {
	if d := r.URL.Query().Get("display"); d != "" {
		return core.NormalizeCurrency(d)
	}
	return core.NormalizeCurrency(s.displayCcy)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// serveCachedJSON renders a view once per snapshot version and display
// currency, then serves the cached bytes.
func (s *Server) serveCachedJSON(w http.ResponseWriter, r *http.Request, view string, extra []string, render func() (any, error)) {
	display := s.display(r)
	key := cache.Key(view, s.holder.Version(), append([]string{display}, extra...)...)

	if body, ok := s.viewCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	v, err := render()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render view", "view", view, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode view", "view", view, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.viewCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	s.serveCachedJSON(w, r, "expenses", nil, func() (any, error) {
		return s.views.ExpenseRows(s.holder.Current(), s.display(r)), nil
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	anchor := time.Now()
	s.serveCachedJSON(w, r, "budgets", []string{anchor.Format("2006-01")}, func() (any, error) {
		return s.views.BudgetRows(s.holder.Current(), s.display(r), anchor), nil
	})
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	s.serveCachedJSON(w, r, "goals", nil, func() (any, error) {
		return s.views.GoalRows(s.holder.Current(), s.display(r)), nil
	})
}

func (s *Server) handleCategorySeries(w http.ResponseWriter, r *http.Request) {
	anchor := time.Now()
	s.serveCachedJSON(w, r, "series_categories", []string{anchor.Format("2006-01")}, func() (any, error) {
		return s.views.CategorySeries(s.holder.Current(), s.display(r), anchor), nil
	})
}

func (s *Server) handleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	anchor := time.Now()
	months := s.views.TrendMonths()
	if m := r.URL.Query().Get("months"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 && n <= 120 {
			months = n
		} else {
			http.Error(w, "invalid months parameter", http.StatusBadRequest)
			return
		}
	}
	extra := []string{anchor.Format("2006-01"), strconv.Itoa(months)}
	s.serveCachedJSON(w, r, "series_monthly", extra, func() (any, error) {
		return s.views.MonthlySeries(s.holder.Current(), s.display(r), anchor, months), nil
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := s.views.WriteCSV(w, s.holder.Current(), s.display(r)); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV export", "error", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.views.WriteHTMLReport(w, s.holder.Current(), s.display(r), time.Now()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to render report", "error", err)
	}
}
