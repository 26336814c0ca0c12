// Package sqlite stores orders, contact requests and the service catalog in a
// local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

//go:embed schema.sql
var schemaSQL string

const defaultListLimit = 100

// Store owns the database handle and hands out repositories.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema. Use
// ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Orders returns the order repository.
func (s *Store) Orders() repositories.OrderRepository { return orderRepository{db: s.db} }

// Contacts returns the contact repository.
func (s *Store) Contacts() repositories.ContactRepository { return contactRepository{db: s.db} }

type orderRepository struct {
	db *sql.DB
}

func (r orderRepository) Insert(ctx context.Context, order domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (id, items_json, total, name, email, message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.ID, string(items), order.Total, order.Name, order.Email, order.Message, formatTime(order.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

func (r orderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, items_json, total, name, email, message, created_at FROM orders WHERE id = ?`, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, repositories.ErrNotFound
	}
	return order, err
}

func (r orderRepository) List(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, items_json, total, name, email, message, created_at FROM orders ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (domain.Order, error) {
	var (
		order     domain.Order
		itemsJSON string
		createdAt string
	)
	if err := s.Scan(&order.ID, &itemsJSON, &order.Total, &order.Name, &order.Email, &order.Message, &createdAt); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode order %s items: %w", order.ID, err)
	}
	order.CreatedAt = parseTime(createdAt)
	return order, nil
}

type contactRepository struct {
	db *sql.DB
}

func (r contactRepository) Insert(ctx context.Context, contact domain.Contact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)`,
		contact.ID, contact.Name, contact.Email, contact.Message, formatTime(contact.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert contact %s: %w", contact.ID, err)
	}
	return nil
}

func (r contactRepository) List(ctx context.Context, limit int) ([]domain.Contact, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at FROM contacts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var (
			contact   domain.Contact
			createdAt string
		)
		if err := rows.Scan(&contact.ID, &contact.Name, &contact.Email, &contact.Message, &createdAt); err != nil {
			return nil, err
		}
		contact.CreatedAt = parseTime(createdAt)
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
