package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"pharmadesk/m/domain"
)

func (s *Store) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	c := domain.Category{Name: strings.TrimSpace(name)}
	err := s.db.QueryRowxContext(ctx, s.q(`INSERT INTO categories (name) VALUES (?) RETURNING id`), c.Name).Scan(&c.ID)
	if isUniqueViolation(err) {
		return domain.Category{}, fmt.Errorf("category %q: %w", c.Name, domain.ErrConflict)
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := s.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) CreateSupplier(ctx context.Context, sup domain.Supplier) (domain.Supplier, error) {
	sup.Name = strings.TrimSpace(sup.Name)
	err := s.db.QueryRowxContext(ctx, s.q(`INSERT INTO suppliers (name, contact_info, address) VALUES (?, ?, ?) RETURNING id`),
		sup.Name, sup.ContactInfo, sup.Address).Scan(&sup.ID)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return sup, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	suppliers := []domain.Supplier{}
	if err := s.db.SelectContext(ctx, &suppliers, `SELECT id, name, contact_info, address FROM suppliers ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// CreateMedicine inserts m after checking that its category and supplier exist.
func (s *Store) CreateMedicine(ctx context.Context, m domain.Medicine) (domain.Medicine, error) {
	if err := domain.CheckAmount("price", m.Price, domain.MaxUnitAmount); err != nil {
		return domain.Medicine{}, err
	}
	if err := domain.CheckAmount("purchasePrice", m.PurchasePrice, domain.MaxUnitAmount); err != nil {
		return domain.Medicine{}, err
	}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)`, m.CategoryID); err != nil {
			return err
		} else if !ok {
			return domain.ErrUnknownCategory
		}
		if ok, err := s.exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM suppliers WHERE id = ?)`, m.SupplierID); err != nil {
			return err
		} else if !ok {
			return domain.ErrUnknownSupplier
		}
		err := tx.QueryRowxContext(ctx, s.q(`INSERT INTO medicines (name, category_id, supplier_id, price, purchase_price, quantity, expiry_date, description, rack_number)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
			strings.TrimSpace(m.Name), m.CategoryID, m.SupplierID, m.Price, m.PurchasePrice, m.Quantity,
			m.ExpiryDate, m.Description, m.RackNumber).Scan(&m.ID)
		if err != nil {
			return fmt.Errorf("insert medicine: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Medicine{}, err
	}
	m.Name = strings.TrimSpace(m.Name)
	return m, nil
}

func (s *Store) exists(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (bool, error) {
	var found bool
	if err := tx.GetContext(ctx, &found, s.q(query), args...); err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return found, nil
}

const medicineListingQuery = `SELECT m.id, m.name, m.category_id, m.supplier_id, m.price, m.purchase_price, m.quantity,
                m.expiry_date, m.description, m.rack_number,
                c.name AS category_name, s.name AS supplier_name
                FROM medicines m
                JOIN categories c ON c.id = m.category_id
                JOIN suppliers s ON s.id = m.supplier_id`

// ListMedicines returns the catalog, optionally filtered by a case-insensitive name match.
func (s *Store) ListMedicines(ctx context.Context, search string) ([]domain.MedicineListing, error) {
	query := medicineListingQuery
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE LOWER(m.name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY m.name`

	medicines := []domain.MedicineListing{}
	if err := s.db.SelectContext(ctx, &medicines, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

func (s *Store) MedicineByID(ctx context.Context, id int64) (domain.MedicineListing, error) {
	var m domain.MedicineListing
	err := s.db.GetContext(ctx, &m, s.q(medicineListingQuery+` WHERE m.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MedicineListing{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.MedicineListing{}, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// Restock adds quantity units to a medicine's stock and returns the new level.
func (s *Store) Restock(ctx context.Context, id, quantity int64) (int64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	var level int64
	err := s.db.QueryRowxContext(ctx, s.q(`UPDATE medicines SET quantity = quantity + ? WHERE id = ? RETURNING quantity`), quantity, id).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("restock medicine: %w", err)
	}
	return level, nil
}

// Inventory lists every medicine with its sale price and stock level.
func (s *Store) Inventory(ctx context.Context) ([]domain.InventoryItem, error) {
	items := []domain.InventoryItem{}
	if err := s.db.SelectContext(ctx, &items, `SELECT id, name, price, quantity FROM medicines ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}

// ExpiringMedicines lists in-stock medicines whose expiry date falls on or before now+days.
func (s *Store) ExpiringMedicines(ctx context.Context, now time.Time, days int) ([]domain.ExpiringMedicine, error) {
	cutoff := now.AddDate(0, 0, days).Format(time.DateOnly)
	items := []domain.ExpiringMedicine{}
	err := s.db.SelectContext(ctx, &items, s.q(`SELECT id, name, quantity, expiry_date, rack_number FROM medicines
                WHERE expiry_date IS NOT NULL
                AND quantity > 0
                AND expiry_date <= ?
                ORDER BY expiry_date ASC`), cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring medicines: %w", err)
	}
	return items, nil
}
