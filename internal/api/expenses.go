package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pharmadesk/m/domain"
)

type expenseItemRequest struct {
	Title  string          `json:"title" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Notes  string          `json:"notes" validate:"max=255"`
}

type expenseRequest struct {
	Date  string               `json:"date" validate:"required"`
	Items []expenseItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) addExpenses(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	day, err := parseDay(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	items := make([]domain.DailyExpenseItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.DailyExpenseItem{
			Title:  strings.TrimSpace(item.Title),
			Amount: item.Amount,
			Notes:  nullIfEmpty(item.Notes),
		}
	}

	expense, err := h.store.AddExpenses(r.Context(), day, items)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	days, err := h.store.ListExpenses(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, days)
}

func (h *Handler) dailyExpensesTotal(w http.ResponseWriter, r *http.Request) {
	day, ok := h.reportDay(w, r)
	if !ok {
		return
	}
	total, err := h.store.ExpensesTotal(r.Context(), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, dailyFigure{Date: day, Total: total})
}
