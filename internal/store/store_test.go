package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/database"
	"pharmadesk/m/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect("sqlite", filepath.Join(t.TempDir(), "pharma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Run(db))
	return New(db, nil)
}

type fixture struct {
	store      *Store
	categoryID int64
	supplierID int64
	customerID int64
	cashierID  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s := newTestStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, "Analgesics")
	require.NoError(t, err)
	sup, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Acme Pharma"})
	require.NoError(t, err)

	customer := &domain.User{FullName: "Walk In", Username: "walkin", PasswordHash: "x", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, s.CreateUser(ctx, customer))
	cashier := &domain.User{Username: "cashier", PasswordHash: "x", Role: domain.RolePharmacist, IsActive: true}
	require.NoError(t, s.CreateUser(ctx, cashier))

	return fixture{store: s, categoryID: cat.ID, supplierID: sup.ID, customerID: customer.ID, cashierID: cashier.ID}
}

func (f fixture) medicine(t *testing.T, name, price, cost string, quantity int64) domain.Medicine {
	t.Helper()
	m, err := f.store.CreateMedicine(context.Background(), domain.Medicine{
		Name:          name,
		CategoryID:    f.categoryID,
		SupplierID:    f.supplierID,
		Price:         decimal.RequireFromString(price),
		PurchasePrice: decimal.RequireFromString(cost),
		Quantity:      quantity,
	})
	require.NoError(t, err)
	return m
}

func (f fixture) stock(t *testing.T, id int64) int64 {
	t.Helper()
	m, err := f.store.MedicineByID(context.Background(), id)
	require.NoError(t, err)
	return m.Quantity
}

func (f fixture) orderCount(t *testing.T) (orders, details int) {
	t.Helper()
	require.NoError(t, f.store.db.Get(&orders, `SELECT COUNT(*) FROM orders`))
	require.NoError(t, f.store.db.Get(&details, `SELECT COUNT(*) FROM order_details`))
	return orders, details
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
