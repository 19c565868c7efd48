package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmadesk/m/domain"
)

func TestCategoryNamesAreUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, "Antibiotics")
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, " Antibiotics ")
	assert.ErrorIs(t, err, domain.ErrConflict)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Antibiotics"}}, categories)
}

func TestSuppliers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contact := "+92 300 0000000"
	sup, err := s.CreateSupplier(ctx, domain.Supplier{Name: "Zeta Labs", ContactInfo: &contact})
	require.NoError(t, err)
	assert.NotZero(t, sup.ID)

	suppliers, err := s.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, contact, *suppliers[0].ContactInfo)
	assert.Nil(t, suppliers[0].Address)
}

func TestCreateMedicineChecksReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateMedicine(ctx, domain.Medicine{Name: "X", CategoryID: 99, SupplierID: f.supplierID, Price: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)

	_, err = f.store.CreateMedicine(ctx, domain.Medicine{Name: "X", CategoryID: f.categoryID, SupplierID: 99, Price: dec("1")})
	assert.ErrorIs(t, err, domain.ErrUnknownSupplier)

	_, err = f.store.CreateMedicine(ctx, domain.Medicine{Name: "X", CategoryID: f.categoryID, SupplierID: f.supplierID, Price: dec("0.125")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.store.CreateMedicine(ctx, domain.Medicine{Name: "X", CategoryID: f.categoryID, SupplierID: f.supplierID, Price: dec("1"), PurchasePrice: dec("100000000")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	m := f.medicine(t, "Paracetamol 500mg", "2.50", "1.20", 40)
	got, err := f.store.MedicineByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", got.Name)
	assert.Equal(t, "Analgesics", got.Category)
	assert.Equal(t, "Acme Pharma", got.Supplier)
	assert.True(t, dec("2.5").Equal(got.Price))
	assert.True(t, dec("1.2").Equal(got.PurchasePrice))
	assert.Equal(t, int64(40), got.Quantity)

	_, err = f.store.MedicineByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMedicinesSearch(t *testing.T) {
	f := newFixture(t)
	f.medicine(t, "Paracetamol", "2", "1", 10)
	f.medicine(t, "Ibuprofen", "3", "1", 10)
	f.medicine(t, "Para-Amino Salicylic", "9", "5", 10)

	all, err := f.store.ListMedicines(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := f.store.ListMedicines(context.Background(), "PARA")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Para-Amino Salicylic", found[0].Name)
	assert.Equal(t, "Paracetamol", found[1].Name)
}

func TestRestockAndInventory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.medicine(t, "Amoxicillin", "4.75", "3", 5)

	level, err := f.store.Restock(ctx, m.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(25), level)

	_, err = f.store.Restock(ctx, 999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.Restock(ctx, m.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	items, err := f.store.Inventory(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(25), items[0].Quantity)
	assert.True(t, dec("4.75").Equal(items[0].Price))
}

func TestExpiringMedicines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	create := func(name, expiry string, qty int64) {
		_, err := f.store.CreateMedicine(ctx, domain.Medicine{
			Name: name, CategoryID: f.categoryID, SupplierID: f.supplierID,
			Price: dec("1"), Quantity: qty, ExpiryDate: &expiry,
		})
		require.NoError(t, err)
	}
	create("Expired", "2026-02-01", 3)
	create("Soon", "2026-03-20", 3)
	create("Later", "2026-06-01", 3)
	create("Soon but empty", "2026-03-10", 0)
	f.medicine(t, "No expiry", "1", "1", 3)

	items, err := f.store.ExpiringMedicines(ctx, now, 30)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Expired", items[0].Name)
	assert.Equal(t, "Soon", items[1].Name)
	assert.Equal(t, "2026-03-20", items[1].ExpiryDate)
}
