package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pharmadesk/m/domain"
)

// orderDateLayout keeps order dates sortable and lets substr(order_date, 1, 10) select a day.
const orderDateLayout = time.DateTime

type catalogEntry struct {
	ID            int64           `db:"id"`
	Name          string          `db:"name"`
	Price         decimal.Decimal `db:"price"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
}

type customerRef struct {
	ID       int64       `db:"id"`
	FullName string      `db:"full_name"`
	Username string      `db:"username"`
	Role     domain.Role `db:"role"`
	IsActive bool        `db:"is_active"`
}

// CreateOrder records a sale atomically: the order header, one detail row per item and the
// stock decrement of every referenced medicine either all commit or none do. A line whose
// medicine cannot cover the requested quantity fails the whole order with
// *domain.InsufficientStockError. An order recorded as Cancelled moves no stock.
func (s *Store) CreateOrder(ctx context.Context, in domain.NewOrder) (domain.Order, error) {
	if in.Status == "" {
		in.Status = domain.OrderPending
	}
	if err := in.Validate(); err != nil {
		return domain.Order{}, err
	}

	orderDate := strings.TrimSpace(in.OrderDate)
	if orderDate == "" {
		orderDate = time.Now().UTC().Format(orderDateLayout)
	}
	total := domain.OrderTotal(in.Items)

	order := domain.Order{
		CustomerID:    in.CustomerID,
		InvoiceNumber: nullIfEmpty(in.InvoiceNumber),
		OrderDate:     orderDate,
		Status:        in.Status,
		TotalAmount:   total,
		Items:         make([]domain.OrderDetail, 0, len(in.Items)),
	}
	if in.CreatedBy > 0 {
		createdBy := in.CreatedBy
		order.CreatedBy = &createdBy
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		customer, err := s.lookupCustomer(ctx, tx, in.CustomerID)
		if err != nil {
			return err
		}
		order.CustomerName = customer.displayName()

		catalog, err := s.lookupMedicines(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		err = tx.QueryRowxContext(ctx, s.q(`INSERT INTO orders (customer_id, invoice_number, order_date, status, total_amount, created_by)
                VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
			order.CustomerID, order.InvoiceNumber, order.OrderDate, order.Status, total, nullIfZero(in.CreatedBy)).Scan(&order.ID)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range in.Items {
			med := catalog[item.MedicineID]
			if !item.Price.Equal(med.Price) {
				s.log.Warn("order line price differs from catalog price",
					zap.Int64("medicine_id", item.MedicineID),
					zap.String("submitted", item.Price.String()),
					zap.String("catalog", med.Price.String()))
			}

			detail := domain.OrderDetail{
				OrderID:      order.ID,
				MedicineID:   item.MedicineID,
				MedicineName: med.Name,
				Quantity:     item.Quantity,
				Price:        item.Price,
				UnitCost:     med.PurchasePrice,
				Total:        item.Subtotal(),
			}
			err := tx.QueryRowxContext(ctx, s.q(`INSERT INTO order_details (order_id, medicine_id, quantity, price, unit_cost)
                VALUES (?, ?, ?, ?, ?) RETURNING id`),
				detail.OrderID, detail.MedicineID, detail.Quantity, detail.Price, detail.UnitCost).Scan(&detail.ID)
			if err != nil {
				return fmt.Errorf("insert order detail: %w", err)
			}

			if in.Status != domain.OrderCancelled {
				if err := s.decrementStock(ctx, tx, item.MedicineID, item.Quantity); err != nil {
					return err
				}
			}
			order.Items = append(order.Items, detail)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c customerRef) displayName() string {
	return domain.User{FullName: c.FullName, Username: c.Username}.DisplayName()
}

func (s *Store) lookupCustomer(ctx context.Context, tx *sqlx.Tx, id int64) (customerRef, error) {
	var c customerRef
	err := tx.GetContext(ctx, &c, s.q(`SELECT id, full_name, username, role, is_active FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return customerRef{}, fmt.Errorf("%w: %d", domain.ErrUnknownCustomer, id)
	}
	if err != nil {
		return customerRef{}, fmt.Errorf("load customer: %w", err)
	}
	if c.Role != domain.RoleCustomer || !c.IsActive {
		return customerRef{}, fmt.Errorf("%w: %d is not an active customer", domain.ErrUnknownCustomer, id)
	}
	return c, nil
}

// lookupMedicines loads every medicine the items reference and fails before any write
// when one of them does not exist.
func (s *Store) lookupMedicines(ctx context.Context, tx *sqlx.Tx, items []domain.OrderItem) (map[int64]catalogEntry, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.MedicineID] {
			seen[item.MedicineID] = true
			ids = append(ids, item.MedicineID)
		}
	}

	query, args, err := sqlx.In(`SELECT id, name, price, purchase_price FROM medicines WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare medicine lookup: %w", err)
	}
	var rows []catalogEntry
	if err := tx.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}

	catalog := make(map[int64]catalogEntry, len(rows))
	for _, row := range rows {
		catalog[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return nil, fmt.Errorf("%w: %d", domain.ErrUnknownMedicine, id)
		}
	}
	return catalog, nil
}

// decrementStock takes quantity units only if that many remain.
func (s *Store) decrementStock(ctx context.Context, tx *sqlx.Tx, medicineID, quantity int64) error {
	res, err := tx.ExecContext(ctx, s.q(`UPDATE medicines SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`),
		quantity, medicineID, quantity)
	if isCheckViolation(err) {
		return &domain.InsufficientStockError{MedicineID: medicineID, Requested: quantity}
	}
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n == 0 {
		return &domain.InsufficientStockError{MedicineID: medicineID, Requested: quantity}
	}
	return nil
}

// OrderFilter narrows ListOrders to an inclusive YYYY-MM-DD range.
type OrderFilter struct {
	From string
	To   string
}

const orderHeaderQuery = `SELECT o.id, o.customer_id, COALESCE(NULLIF(u.full_name, ''), u.username, '') AS customer_name,
                o.invoice_number, o.order_date, o.status, o.total_amount, o.created_by
                FROM orders o
                LEFT JOIN users u ON u.id = o.customer_id`

// ListOrders returns orders newest first, each with its detail lines.
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.From != "" {
		clauses = append(clauses, `substr(o.order_date, 1, 10) >= ?`)
		args = append(args, filter.From)
	}
	if filter.To != "" {
		clauses = append(clauses, `substr(o.order_date, 1, 10) <= ?`)
		args = append(args, filter.To)
	}
	query := orderHeaderQuery
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY o.order_date DESC, o.id DESC"

	orders := []domain.Order{}
	if err := s.db.SelectContext(ctx, &orders, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := s.attachDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Store) OrderByID(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := s.db.GetContext(ctx, &order, s.q(orderHeaderQuery+` WHERE o.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	orders := []domain.Order{order}
	if err := s.attachDetails(ctx, orders); err != nil {
		return domain.Order{}, err
	}
	return orders[0], nil
}

func (s *Store) attachDetails(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}

	query, args, err := sqlx.In(`SELECT d.id, d.order_id, d.medicine_id, m.name AS medicine_name, d.quantity, d.price, d.unit_cost
                FROM order_details d
                JOIN medicines m ON m.id = d.medicine_id
                WHERE d.order_id IN (?)
                ORDER BY d.id`, ids)
	if err != nil {
		return fmt.Errorf("prepare order details query: %w", err)
	}
	var rows []domain.OrderDetail
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return fmt.Errorf("load order details: %w", err)
	}

	byOrder := make(map[int64][]domain.OrderDetail)
	for _, row := range rows {
		row.Total = row.Price.Mul(decimal.NewFromInt(row.Quantity))
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderDetail{}
		}
	}
	return nil
}
