package domain

import "github.com/shopspring/decimal"

type DailyExpense struct {
	ID          int64              `db:"id" json:"id"`
	ExpenseDate string             `db:"expense_date" json:"date"`
	CreatedAt   string             `db:"created_at" json:"createdAt,omitempty"`
	Items       []DailyExpenseItem `db:"-" json:"items"`
	Total       decimal.Decimal    `db:"-" json:"total"`
}

type DailyExpenseItem struct {
	ID             int64           `db:"id" json:"id"`
	DailyExpenseID int64           `db:"daily_expense_id" json:"-"`
	Title          string          `db:"title" json:"title"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Notes          *string         `db:"notes" json:"notes,omitempty"`
}

// ExpenseTotal sums the item amounts.
func ExpenseTotal(items []DailyExpenseItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total
}
