package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/store"
)

var requiredColumns = []string{"name", "category", "supplier", "price"}

// LoadMedicinesFile opens csvPath and imports it with LoadMedicines.
func LoadMedicinesFile(ctx context.Context, st *store.Store, csvPath string, log *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open medicine catalog: %w", err)
	}
	defer file.Close()
	return LoadMedicines(ctx, st, file, log)
}

// LoadMedicines ingests a catalog CSV whose header names the columns name, category,
// supplier, price and optionally purchase_price, quantity, expiry_date and rack_number.
// Malformed rows are logged and skipped; medicines already in the catalog are ignored.
func LoadMedicines(ctx context.Context, st *store.Store, r io.Reader, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read medicine header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return 0, fmt.Errorf("medicine catalog is missing the %q column", name)
		}
	}

	var rows []store.MedicineImport
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Warn("unable to read medicine row", zap.Int("line", line), zap.Error(err))
			continue
		}
		row, err := parseRow(record, columns)
		if err != nil {
			log.Warn("skipping medicine row", zap.Int("line", line), zap.Error(err))
			continue
		}
		rows = append(rows, row)
	}

	inserted, err := st.ImportMedicines(ctx, rows)
	if err != nil {
		return 0, err
	}
	log.Info("seeded medicine catalog", zap.Int("rows", inserted), zap.Int("skipped", len(rows)-inserted))
	return inserted, nil
}

func parseRow(record []string, columns map[string]int) (store.MedicineImport, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := store.MedicineImport{
		Name:     field("name"),
		Category: field("category"),
		Supplier: field("supplier"),
	}
	if row.Name == "" || row.Category == "" || row.Supplier == "" {
		return store.MedicineImport{}, errors.New("name, category and supplier are required")
	}

	price, err := decimal.NewFromString(field("price"))
	if err != nil || !price.IsPositive() {
		return store.MedicineImport{}, fmt.Errorf("invalid price %q", field("price"))
	}
	if err := domain.CheckAmount("price", price, domain.MaxUnitAmount); err != nil {
		return store.MedicineImport{}, err
	}
	row.Price = price

	if raw := field("purchase_price"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil || cost.IsNegative() {
			return store.MedicineImport{}, fmt.Errorf("invalid purchase_price %q", raw)
		}
		if err := domain.CheckAmount("purchase_price", cost, domain.MaxUnitAmount); err != nil {
			return store.MedicineImport{}, err
		}
		row.PurchasePrice = cost
	}
	if raw := field("quantity"); raw != "" {
		qty, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || qty < 0 {
			return store.MedicineImport{}, fmt.Errorf("invalid quantity %q", raw)
		}
		row.Quantity = qty
	}
	if raw := field("expiry_date"); raw != "" {
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			return store.MedicineImport{}, fmt.Errorf("invalid expiry_date %q", raw)
		}
		row.ExpiryDate = &raw
	}
	if raw := field("rack_number"); raw != "" {
		row.RackNumber = &raw
	}
	return row, nil
}
