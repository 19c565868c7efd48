package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pharmadesk/m/domain"
)

type dailyFigure struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.store.Overview(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

func (h *Handler) dailySale(w http.ResponseWriter, r *http.Request) {
	h.dailyReport(w, r, h.store.DailySale)
}

func (h *Handler) dailyPurchase(w http.ResponseWriter, r *http.Request) {
	h.dailyReport(w, r, h.store.DailyPurchase)
}

func (h *Handler) dailyProfit(w http.ResponseWriter, r *http.Request) {
	h.dailyReport(w, r, h.store.DailyProfit)
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	day, ok := h.reportDay(w, r)
	if !ok {
		return
	}
	summary, err := h.store.DailySummary(r.Context(), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request, query func(context.Context, string) (decimal.Decimal, error)) {
	day, ok := h.reportDay(w, r)
	if !ok {
		return
	}
	total, err := query(r.Context(), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dailyFigure{Date: day, Total: total})
}

// reportDay reads ?date=, defaulting to today in UTC.
func (h *Handler) reportDay(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		return h.now().UTC().Format(time.DateOnly), true
	}
	day, err := parseDay(raw)
	if err != nil {
		h.fail(w, r, err)
		return "", false
	}
	return day, true
}

// parseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the calendar day.
func parseDay(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Format(time.DateOnly), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Format(time.DateOnly), nil
	}
	return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, raw)
}
