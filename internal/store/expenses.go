package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"pharmadesk/m/domain"
)

// AddExpenses appends items to the ledger of the given day (YYYY-MM-DD), creating the day
// on first use, and returns the whole day afterwards.
func (s *Store) AddExpenses(ctx context.Context, date string, items []domain.DailyExpenseItem) (domain.DailyExpense, error) {
	if len(items) == 0 {
		return domain.DailyExpense{}, fmt.Errorf("%w: at least one expense item is required", domain.ErrInvalidInput)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Title) == "" {
			return domain.DailyExpense{}, fmt.Errorf("%w: item %d: title is required", domain.ErrInvalidInput, i)
		}
		if !item.Amount.IsPositive() {
			return domain.DailyExpense{}, fmt.Errorf("%w: item %d: amount must be positive", domain.ErrInvalidInput, i)
		}
		if err := domain.CheckAmount(fmt.Sprintf("item %d: amount", i), item.Amount, domain.MaxTotalAmount); err != nil {
			return domain.DailyExpense{}, err
		}
	}

	var day domain.DailyExpense
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO daily_expenses (expense_date) VALUES (?) ON CONFLICT (expense_date) DO NOTHING`), date); err != nil {
			return fmt.Errorf("insert expense day: %w", err)
		}
		if err := tx.GetContext(ctx, &day, s.q(`SELECT id, expense_date, created_at FROM daily_expenses WHERE expense_date = ?`), date); err != nil {
			return fmt.Errorf("load expense day: %w", err)
		}
		for _, item := range items {
			_, err := tx.ExecContext(ctx, s.q(`INSERT INTO daily_expense_items (daily_expense_id, title, amount, notes) VALUES (?, ?, ?, ?)`),
				day.ID, strings.TrimSpace(item.Title), item.Amount, item.Notes)
			if err != nil {
				return fmt.Errorf("insert expense item: %w", err)
			}
		}
		if err := tx.SelectContext(ctx, &day.Items, s.q(`SELECT id, daily_expense_id, title, amount, notes FROM daily_expense_items
                WHERE daily_expense_id = ? ORDER BY id`), day.ID); err != nil {
			return fmt.Errorf("load expense items: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.DailyExpense{}, err
	}
	day.Total = domain.ExpenseTotal(day.Items)
	return day, nil
}

// ListExpenses returns every expense day, newest first, with its items in entry order.
func (s *Store) ListExpenses(ctx context.Context) ([]domain.DailyExpense, error) {
	days := []domain.DailyExpense{}
	if err := s.db.SelectContext(ctx, &days, `SELECT id, expense_date, created_at FROM daily_expenses ORDER BY expense_date DESC`); err != nil {
		return nil, fmt.Errorf("list expense days: %w", err)
	}
	if len(days) == 0 {
		return days, nil
	}

	ids := make([]int64, len(days))
	for i, day := range days {
		ids[i] = day.ID
	}
	query, args, err := sqlx.In(`SELECT id, daily_expense_id, title, amount, notes FROM daily_expense_items
                WHERE daily_expense_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare expense items query: %w", err)
	}
	var rows []domain.DailyExpenseItem
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("load expense items: %w", err)
	}

	byDay := make(map[int64][]domain.DailyExpenseItem)
	for _, row := range rows {
		byDay[row.DailyExpenseID] = append(byDay[row.DailyExpenseID], row)
	}
	for i := range days {
		days[i].Items = byDay[days[i].ID]
		if days[i].Items == nil {
			days[i].Items = []domain.DailyExpenseItem{}
		}
		days[i].Total = domain.ExpenseTotal(days[i].Items)
	}
	return days, nil
}

// ExpensesTotal sums the expense items recorded for date.
func (s *Store) ExpensesTotal(ctx context.Context, date string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total, s.q(`SELECT COALESCE(SUM(i.amount), 0) FROM daily_expense_items i
                JOIN daily_expenses d ON d.id = i.daily_expense_id
                WHERE d.expense_date = ?`), date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total.Round(2), nil
}
