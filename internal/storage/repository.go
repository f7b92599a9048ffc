// Package storage persists users and tours in SQLite. A tour is stored as
// a single aggregate row: members, expenses and destinations live in JSON
// columns and are written back whole on every save.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tourbook/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser implements auth.UserStorage
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *core.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, password_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.PasswordVersion,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail implements auth.UserStorage
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, password_version, created_at, updated_at
		FROM users WHERE email = ?`, email))
}

// GetUserByID implements auth.UserStorage
func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, password_version, created_at, updated_at
		FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.PasswordVersion, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// UpdatePassword implements auth.UserStorage. The hash swap and version
// bump happen in one statement so no session check can observe the new
// hash with the old version or vice versa.
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_version = password_version + 1, updated_at = ?
		WHERE id = ?`,
		passwordHash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveTour upserts the whole tour aggregate, embedded collections included.
func (r *SQLiteRepository) SaveTour(ctx context.Context, t *core.Tour) error {
	destinations, err := json.Marshal(t.Destinations)
	if err != nil {
		return fmt.Errorf("marshal destinations: %w", err)
	}
	members, err := json.Marshal(t.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	expenses, err := json.Marshal(t.Expenses)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tours (
			id, name, description, destinations, members, expenses,
			total_budget_cents, currency, total_expense_cents, per_head_cents,
			status, start_date, end_date, image_url, owner_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			destinations = excluded.destinations,
			members = excluded.members,
			expenses = excluded.expenses,
			total_budget_cents = excluded.total_budget_cents,
			currency = excluded.currency,
			total_expense_cents = excluded.total_expense_cents,
			per_head_cents = excluded.per_head_cents,
			status = excluded.status,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			image_url = excluded.image_url,
			owner_id = excluded.owner_id,
			updated_at = excluded.updated_at`,
		t.ID, t.Name, t.Description, string(destinations), string(members), string(expenses),
		t.TotalBudget.Cents, t.Currency, t.TotalExpense.Cents, t.PerHead.Cents,
		string(t.Status), nullTime(t.StartDate), nullTime(t.EndDate), t.ImageURL, t.OwnerID,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert tour: %w", err)
	}
	return nil
}

// GetTour loads a tour aggregate by ID.
func (r *SQLiteRepository) GetTour(ctx context.Context, id string) (*core.Tour, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, destinations, members, expenses,
			total_budget_cents, currency, total_expense_cents, per_head_cents,
			status, start_date, end_date, image_url, owner_id, created_at, updated_at
		FROM tours WHERE id = ?`, id)

	t, err := scanTour(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTours returns all tours ordered newest first.
func (r *SQLiteRepository) ListTours(ctx context.Context) ([]*core.Tour, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, destinations, members, expenses,
			total_budget_cents, currency, total_expense_cents, per_head_cents,
			status, start_date, end_date, image_url, owner_id, created_at, updated_at
		FROM tours ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tours: %w", err)
	}
	defer rows.Close()

	var tours []*core.Tour
	for rows.Next() {
		t, err := scanTour(rows)
		if err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tours: %w", err)
	}
	return tours, nil
}

// DeleteTour removes a tour by ID.
func (r *SQLiteRepository) DeleteTour(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tours WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTour(row rowScanner) (*core.Tour, error) {
	var (
		t            core.Tour
		destinations string
		members      string
		expenses     string
		status       string
		startDate    sql.NullTime
		endDate      sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &destinations, &members, &expenses,
		&t.TotalBudget.Cents, &t.Currency, &t.TotalExpense.Cents, &t.PerHead.Cents,
		&status, &startDate, &endDate, &t.ImageURL, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = core.TourStatus(status)
	if startDate.Valid {
		t.StartDate = startDate.Time
	}
	if endDate.Valid {
		t.EndDate = endDate.Time
	}
	if err := json.Unmarshal([]byte(destinations), &t.Destinations); err != nil {
		return nil, fmt.Errorf("unmarshal destinations: %w", err)
	}
	if err := json.Unmarshal([]byte(members), &t.Members); err != nil {
		return nil, fmt.Errorf("unmarshal members: %w", err)
	}
	if err := json.Unmarshal([]byte(expenses), &t.Expenses); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}
	return &t, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
