package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/m/domain"
)

func TestAddExpensesAppendsToDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	note := "monthly"

	day, err := s.AddExpenses(ctx, "2026-02-03", []domain.DailyExpenseItem{
		{Title: "Rent", Amount: dec("500"), Notes: &note},
		{Title: "Electricity", Amount: dec("42.35")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-03", day.ExpenseDate)
	require.Len(t, day.Items, 2)
	assert.True(t, dec("542.35").Equal(day.Total), day.Total.String())

	again, err := s.AddExpenses(ctx, "2026-02-03", []domain.DailyExpenseItem{{Title: "Tea", Amount: dec("3.15")}})
	require.NoError(t, err)
	assert.Equal(t, day.ID, again.ID)
	require.Len(t, again.Items, 3)
	assert.Equal(t, "Tea", again.Items[2].Title)

	_, err = s.AddExpenses(ctx, "2026-02-04", []domain.DailyExpenseItem{{Title: "Cleaning", Amount: dec("10")}})
	require.NoError(t, err)

	days, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-02-04", days[0].ExpenseDate)
	assert.Equal(t, "2026-02-03", days[1].ExpenseDate)
	assert.Equal(t, "Rent", days[1].Items[0].Title)
	assert.Equal(t, "monthly", *days[1].Items[0].Notes)
	assert.True(t, dec("545.50").Equal(days[1].Total), days[1].Total.String())

	total, err := s.ExpensesTotal(ctx, "2026-02-03")
	require.NoError(t, err)
	assert.True(t, dec("545.50").Equal(total), total.String())

	none, err := s.ExpensesTotal(ctx, "2020-01-01")
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestAddExpensesValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := map[string][]domain.DailyExpenseItem{
		"no items":        nil,
		"blank title":     {{Title: "  ", Amount: dec("1")}},
		"zero amount":     {{Title: "Rent", Amount: dec("0")}},
		"negative amount": {{Title: "Rent", Amount: dec("-5")}},
		"sub-cent amount": {{Title: "Rent", Amount: dec("1.005")}},
		"amount too large": {{Title: "Rent", Amount: dec("10000000000")}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddExpenses(ctx, "2026-02-03", items)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	days, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, days)
}
