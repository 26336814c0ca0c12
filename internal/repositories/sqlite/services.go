package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

const serviceColumns = `slug, name, description, price_display, price, image`

// Services returns the service catalog repository.
func (s *Store) Services() repositories.ServiceRepository { return serviceRepository{db: s.db} }

type serviceRepository struct {
	db *sql.DB
}

func (r serviceRepository) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY position, slug`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (r serviceRepository) Get(ctx context.Context, slug string) (domain.Service, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = ?`, slug)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Service{}, repositories.ErrNotFound
	}
	return svc, err
}

func (r serviceRepository) Insert(ctx context.Context, svc domain.Service) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO services (slug, position, name, description, price_display, price, image)
		 SELECT ?, COALESCE(MAX(position), -1) + 1, ?, ?, ?, ?, ? FROM services`,
		svc.Slug, svc.Name, svc.Description, svc.PriceDisplay, svc.Price, svc.Image,
	)
	if isConstraint(err) {
		return fmt.Errorf("insert service %s: %w", svc.Slug, repositories.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert service %s: %w", svc.Slug, err)
	}
	return nil
}

func (r serviceRepository) Update(ctx context.Context, svc domain.Service) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET name = ?, description = ?, price_display = ?, price = ?, image = ? WHERE slug = ?`,
		svc.Name, svc.Description, svc.PriceDisplay, svc.Price, svc.Image, svc.Slug,
	)
	if err != nil {
		return fmt.Errorf("update service %s: %w", svc.Slug, err)
	}
	return requireAffected(res, svc.Slug)
}

func (r serviceRepository) Delete(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("delete service %s: %w", slug, err)
	}
	return requireAffected(res, slug)
}

func (r serviceRepository) Seed(ctx context.Context, services []domain.Service) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed services: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count); err != nil {
		return 0, fmt.Errorf("seed services: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	for i, svc := range services {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO services (slug, position, name, description, price_display, price, image) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			svc.Slug, i, svc.Name, svc.Description, svc.PriceDisplay, svc.Price, svc.Image,
		); err != nil {
			return 0, fmt.Errorf("seed service %s: %w", svc.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed services: %w", err)
	}
	return len(services), nil
}

func scanService(s scanner) (domain.Service, error) {
	var svc domain.Service
	if err := s.Scan(&svc.Slug, &svc.Name, &svc.Description, &svc.PriceDisplay, &svc.Price, &svc.Image); err != nil {
		return domain.Service{}, err
	}
	return svc, nil
}

func requireAffected(res sql.Result, slug string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("service %s: %w", slug, repositories.ErrNotFound)
	}
	return nil
}

func isConstraint(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint
}
