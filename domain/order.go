package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// ParseOrderStatus defaults an empty status to Pending.
func ParseOrderStatus(s string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return OrderPending, nil
	}
	for _, status := range []OrderStatus{OrderPending, OrderCompleted, OrderCancelled} {
		if strings.EqualFold(trimmed, string(status)) {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, s)
}

type Order struct {
	ID            int64           `db:"id" json:"id"`
	CustomerID    int64           `db:"customer_id" json:"customerId"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	InvoiceNumber *string         `db:"invoice_number" json:"invoiceNumber,omitempty"`
	OrderDate     string          `db:"order_date" json:"date"`
	Status        OrderStatus     `db:"status" json:"status"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	CreatedBy     *int64          `db:"created_by" json:"createdBy,omitempty"`
	Items         []OrderDetail   `db:"-" json:"items"`
}

// OrderDetail is one persisted line. Price is the unit price agreed at sale time and
// UnitCost the medicine's purchase price at that moment.
type OrderDetail struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"orderId"`
	MedicineID   int64           `db:"medicine_id" json:"medicineId"`
	MedicineName string          `db:"medicine_name" json:"medicineName"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"-"`
	Total        decimal.Decimal `db:"-" json:"total"`
}

// OrderItem is a requested line of a new order.
type OrderItem struct {
	MedicineID int64
	Quantity   int64
	Price      decimal.Decimal
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

type NewOrder struct {
	CustomerID    int64
	InvoiceNumber string
	OrderDate     string
	Status        OrderStatus
	CreatedBy     int64
	Items         []OrderItem
}

// Validate checks the order shape without touching storage.
func (o NewOrder) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	if o.CustomerID <= 0 {
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, o.Status)
	}
	for i, item := range o.Items {
		if item.MedicineID <= 0 {
			return fmt.Errorf("%w: item %d: medicineId is required", ErrInvalidInput, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidInput, i)
		}
		if !item.Price.IsPositive() {
			return fmt.Errorf("%w: item %d: price must be positive", ErrInvalidInput, i)
		}
		if err := CheckAmount(fmt.Sprintf("item %d: price", i), item.Price, MaxUnitAmount); err != nil {
			return err
		}
	}
	return CheckAmount("order total", OrderTotal(o.Items), MaxTotalAmount)
}

// OrderTotal sums quantity*price over the items as supplied.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
