package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MedicineImport is a catalog row that names its category and supplier instead of
// referencing them by id.
type MedicineImport struct {
	Name          string
	Category      string
	Supplier      string
	Price         decimal.Decimal
	PurchasePrice decimal.Decimal
	Quantity      int64
	ExpiryDate    *string
	RackNumber    *string
}

// ImportMedicines inserts rows in one transaction, creating missing categories and
// suppliers by name. Rows whose medicine name already exists are skipped. It returns the
// number of medicines inserted.
func (s *Store) ImportMedicines(ctx context.Context, rows []MedicineImport) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		categories := map[string]int64{}
		suppliers := map[string]int64{}
		for _, row := range rows {
			categoryID, err := s.resolveName(ctx, tx, "categories", row.Category, categories)
			if err != nil {
				return err
			}
			supplierID, err := s.resolveName(ctx, tx, "suppliers", row.Supplier, suppliers)
			if err != nil {
				return err
			}

			name := strings.TrimSpace(row.Name)
			if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM medicines WHERE LOWER(name) = LOWER(?))`, name); err != nil {
				return err
			} else if ok {
				s.log.Debug("skipping existing medicine", zap.String("name", name))
				continue
			}

			_, err = tx.ExecContext(ctx, s.q(`INSERT INTO medicines (name, category_id, supplier_id, price, purchase_price, quantity, expiry_date, rack_number)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
				name, categoryID, supplierID, row.Price, row.PurchasePrice, row.Quantity, row.ExpiryDate, row.RackNumber)
			if err != nil {
				return fmt.Errorf("insert medicine %q: %w", name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// resolveName finds or creates the row of table (categories or suppliers) called name.
func (s *Store) resolveName(ctx context.Context, tx *sqlx.Tx, table, name string, cache map[string]int64) (int64, error) {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	var id int64
	err := tx.GetContext(ctx, &id, s.q(`SELECT id FROM `+table+` WHERE LOWER(name) = ? ORDER BY id LIMIT 1`), key)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowxContext(ctx, s.q(`INSERT INTO `+table+` (name) VALUES (?) RETURNING id`), name).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve %s %q: %w", table, name, err)
	}
	cache[key] = id
	return id, nil
}
