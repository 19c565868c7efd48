package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pharmadesk/m/domain"
)

const userColumns = `id, full_name, username, password_hash, email, phone, role, is_active, created_at`

// CreateUser inserts u and fills in its generated id. A taken username yields domain.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if !u.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, u.Role)
	}
	err := s.db.QueryRowxContext(ctx, s.q(`INSERT INTO users (full_name, username, password_hash, email, phone, role, is_active)
                VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		u.FullName, u.Username, u.PasswordHash, u.Email, u.Phone, u.Role, u.IsActive).Scan(&u.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", u.Username, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ListCustomers returns the active users holding the Customer role.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.CustomerSummary, error) {
	var users []domain.User
	err := s.db.SelectContext(ctx, &users, s.q(`SELECT `+userColumns+` FROM users WHERE role = ? AND is_active = ? ORDER BY full_name, username`),
		domain.RoleCustomer, true)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers := make([]domain.CustomerSummary, len(users))
	for i, u := range users {
		customers[i] = domain.CustomerSummary{ID: u.ID, Name: u.DisplayName()}
	}
	return customers, nil
}

func (s *Store) UpdateUserRole(ctx context.Context, id int64, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET role = ? WHERE id = ?`), role, id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return expectOneRow(res)
}

func (s *Store) SetUserActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET is_active = ? WHERE id = ?`), active, id)
	if err != nil {
		return fmt.Errorf("update user active flag: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
