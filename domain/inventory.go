package domain

import "github.com/shopspring/decimal"

// InventoryItem is the stock projection the sale screen picks medicines from.
type InventoryItem struct {
	ID       int64           `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	Price    decimal.Decimal `db:"price" json:"price"`
	Quantity int64           `db:"quantity" json:"quantity"`
}

type ExpiringMedicine struct {
	ID         int64   `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Quantity   int64   `db:"quantity" json:"quantity"`
	ExpiryDate string  `db:"expiry_date" json:"expiryDate"`
	RackNumber *string `db:"rack_number" json:"rackNumber,omitempty"`
}

type Overview struct {
	Medicines int64 `json:"medicines"`
	Stock     int64 `json:"stock"`
	Users     int64 `json:"users"`
}

// DailySummary collects the per-day money figures of the income screen.
type DailySummary struct {
	Date     string          `json:"date"`
	Sale     decimal.Decimal `json:"sale"`
	Purchase decimal.Decimal `json:"purchase"`
	Profit   decimal.Decimal `json:"profit"`
	Expenses decimal.Decimal `json:"expenses"`
	Income   decimal.Decimal `json:"income"`
}
