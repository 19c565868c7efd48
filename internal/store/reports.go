package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pharmadesk/m/domain"
)

// Overview counts medicines, units in stock and registered users.
func (s *Store) Overview(ctx context.Context) (domain.Overview, error) {
	var row struct {
		Medicines int64 `db:"medicines"`
		Stock     int64 `db:"stock"`
		Users     int64 `db:"users"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT
                (SELECT COUNT(*) FROM medicines) AS medicines,
                (SELECT COALESCE(SUM(quantity), 0) FROM medicines) AS stock,
                (SELECT COUNT(*) FROM users) AS users`)
	if err != nil {
		return domain.Overview{}, fmt.Errorf("load overview: %w", err)
	}
	return domain.Overview{Medicines: row.Medicines, Stock: row.Stock, Users: row.Users}, nil
}

// DailySale sums the totals of the non-cancelled orders dated on date (YYYY-MM-DD).
func (s *Store) DailySale(ctx context.Context, date string) (decimal.Decimal, error) {
	return s.sumForDay(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders
                WHERE substr(order_date, 1, 10) = ? AND status <> ?`, date)
}

// DailyPurchase sums the purchase cost of the units sold on date.
func (s *Store) DailyPurchase(ctx context.Context, date string) (decimal.Decimal, error) {
	return s.sumForDay(ctx, `SELECT COALESCE(SUM(d.quantity * d.unit_cost), 0) FROM order_details d
                JOIN orders o ON o.id = d.order_id
                WHERE substr(o.order_date, 1, 10) = ? AND o.status <> ?`, date)
}

// DailyProfit is the day's sale minus its purchase cost.
func (s *Store) DailyProfit(ctx context.Context, date string) (decimal.Decimal, error) {
	sale, err := s.DailySale(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	purchase, err := s.DailyPurchase(ctx, date)
	if err != nil {
		return decimal.Zero, err
	}
	return sale.Sub(purchase), nil
}

// DailySummary gathers every per-day figure; income is profit minus expenses.
func (s *Store) DailySummary(ctx context.Context, date string) (domain.DailySummary, error) {
	sale, err := s.DailySale(ctx, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	purchase, err := s.DailyPurchase(ctx, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	expenses, err := s.ExpensesTotal(ctx, date)
	if err != nil {
		return domain.DailySummary{}, err
	}
	profit := sale.Sub(purchase)
	return domain.DailySummary{
		Date:     date,
		Sale:     sale,
		Purchase: purchase,
		Profit:   profit,
		Expenses: expenses,
		Income:   profit.Sub(expenses),
	}, nil
}

func (s *Store) sumForDay(ctx context.Context, query, date string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := s.db.GetContext(ctx, &total, s.q(query), date, domain.OrderCancelled); err != nil {
		return decimal.Zero, fmt.Errorf("daily report: %w", err)
	}
	return total.Round(2), nil
}
