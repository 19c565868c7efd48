package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            full_name TEXT NOT NULL DEFAULT '',
            username TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL,
            is_active INTEGER NOT NULL DEFAULT 1,
            created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE
        );`,
	`CREATE TABLE IF NOT EXISTS suppliers (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            contact_info TEXT,
            address TEXT
        );`,
	`CREATE TABLE IF NOT EXISTS medicines (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            category_id INTEGER NOT NULL,
            supplier_id INTEGER NOT NULL,
            price NUMERIC NOT NULL,
            purchase_price NUMERIC NOT NULL DEFAULT 0,
            quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
            expiry_date TEXT,
            description TEXT,
            rack_number TEXT,
            FOREIGN KEY(category_id) REFERENCES categories(id),
            FOREIGN KEY(supplier_id) REFERENCES suppliers(id)
        );`,
	`CREATE TABLE IF NOT EXISTS orders (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            customer_id INTEGER NOT NULL,
            invoice_number TEXT,
            order_date TEXT NOT NULL,
            status TEXT NOT NULL,
            total_amount NUMERIC NOT NULL,
            created_by INTEGER,
            FOREIGN KEY(customer_id) REFERENCES users(id),
            FOREIGN KEY(created_by) REFERENCES users(id)
        );`,
	`CREATE TABLE IF NOT EXISTS order_details (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL,
            medicine_id INTEGER NOT NULL,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price NUMERIC NOT NULL,
            unit_cost NUMERIC NOT NULL DEFAULT 0,
            FOREIGN KEY(order_id) REFERENCES orders(id),
            FOREIGN KEY(medicine_id) REFERENCES medicines(id)
        );`,
	`CREATE TABLE IF NOT EXISTS daily_expenses (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            expense_date TEXT NOT NULL UNIQUE,
            created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS daily_expense_items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            daily_expense_id INTEGER NOT NULL,
            title TEXT NOT NULL,
            amount NUMERIC NOT NULL,
            notes TEXT,
            FOREIGN KEY(daily_expense_id) REFERENCES daily_expenses(id)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date);`,
	`CREATE INDEX IF NOT EXISTS idx_order_details_order_id ON order_details(order_id);`,
	`CREATE INDEX IF NOT EXISTS idx_daily_expense_items_expense ON daily_expense_items(daily_expense_id);`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,
	`CREATE TABLE IF NOT EXISTS suppliers (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			contact_info TEXT,
			address TEXT
		);`,
	`CREATE TABLE IF NOT EXISTS medicines (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			supplier_id INTEGER NOT NULL REFERENCES suppliers(id),
			price NUMERIC(10,2) NOT NULL,
			purchase_price NUMERIC(10,2) NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			expiry_date TEXT,
			description TEXT,
			rack_number TEXT
		);`,
	`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES users(id),
			invoice_number TEXT,
			order_date TEXT NOT NULL,
			status TEXT NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			created_by INTEGER REFERENCES users(id)
		);`,
	`CREATE TABLE IF NOT EXISTS order_details (
			id SERIAL PRIMARY KEY,
			order_id INTEGER NOT NULL REFERENCES orders(id),
			medicine_id INTEGER NOT NULL REFERENCES medicines(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price NUMERIC(10,2) NOT NULL,
			unit_cost NUMERIC(10,2) NOT NULL DEFAULT 0
		);`,
	`CREATE TABLE IF NOT EXISTS daily_expenses (
			id SERIAL PRIMARY KEY,
			expense_date TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	`CREATE TABLE IF NOT EXISTS daily_expense_items (
			id SERIAL PRIMARY KEY,
			daily_expense_id INTEGER NOT NULL REFERENCES daily_expenses(id),
			title TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			notes TEXT
		);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date);`,
	`CREATE INDEX IF NOT EXISTS idx_order_details_order_id ON order_details(order_id);`,
	`CREATE INDEX IF NOT EXISTS idx_daily_expense_items_expense ON daily_expense_items(daily_expense_id);`,
}

// Run creates the database schema for the connected driver.
func Run(db *sqlx.DB) error {
	schema := sqliteSchema
	if db.DriverName() == "pgx" {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
