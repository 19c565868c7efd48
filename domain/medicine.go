package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Supplier struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	ContactInfo *string `db:"contact_info" json:"contactInfo,omitempty"`
	Address     *string `db:"address" json:"address,omitempty"`
}

type Medicine struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	CategoryID    int64           `db:"category_id" json:"categoryId"`
	SupplierID    int64           `db:"supplier_id" json:"supplierId"`
	Price         decimal.Decimal `db:"price" json:"price"`
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	ExpiryDate    *string         `db:"expiry_date" json:"expiryDate,omitempty"`
	Description   *string         `db:"description" json:"description,omitempty"`
	RackNumber    *string         `db:"rack_number" json:"rackNumber,omitempty"`
}

// MedicineListing is a medicine joined with its category and supplier names.
type MedicineListing struct {
	Medicine
	Category string `db:"category_name" json:"category"`
	Supplier string `db:"supplier_name" json:"supplier"`
}
