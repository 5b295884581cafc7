package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/artshoppe/storefront/internal/core/domain"
	"github.com/artshoppe/storefront/internal/core/ports"
)

const uniqueViolation = "23505"

// AdminRepository implements ports.AdminRepository on the hosted Postgres
// admins table.
type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(ctx context.Context, db *sql.DB) (*AdminRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	r := &AdminRepository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *AdminRepository) ensureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS admins (
	id BIGSERIAL PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL CHECK (role IN ('admin', 'super_admin')),
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure admins schema: %w", err)
	}
	return nil
}

const adminColumns = `id, user_id, email, role, is_active, created_at, updated_at`

func (r *AdminRepository) FindByUserID(ctx context.Context, userID string) (*domain.AdminRecord, error) {
	q := `SELECT ` + adminColumns + ` FROM admins WHERE user_id = $1 AND role = ANY($2)`
	roles := pq.Array([]string{string(domain.RoleAdmin), string(domain.RoleSuperAdmin)})
	return r.scanOne(r.db.QueryRowContext(ctx, q, userID, roles))
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*domain.AdminRecord, error) {
	q := `SELECT ` + adminColumns + ` FROM admins WHERE id::text = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *AdminRepository) List(ctx context.Context) ([]*domain.AdminRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	defer rows.Close()

	var out []*domain.AdminRecord
	for rows.Next() {
		rec, err := scanAdmin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return out, nil
}

func (r *AdminRepository) Create(ctx context.Context, rec *domain.AdminRecord) (*domain.AdminRecord, error) {
	q := `
INSERT INTO admins (user_id, email, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING ` + adminColumns
	now := time.Now().UTC()
	out, err := r.scanOne(r.db.QueryRowContext(ctx, q, rec.UserID, rec.Email, string(rec.Role), rec.IsActive, now))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrAdminExists
		}
		return nil, err
	}
	return out, nil
}

func (r *AdminRepository) Update(ctx context.Context, id string, upd ports.AdminUpdate) (*domain.AdminRecord, error) {
	var role sql.NullString
	if upd.Role != nil {
		role = sql.NullString{String: string(*upd.Role), Valid: true}
	}
	var active sql.NullBool
	if upd.IsActive != nil {
		active = sql.NullBool{Bool: *upd.IsActive, Valid: true}
	}

	q := `
UPDATE admins
SET role = COALESCE($2, role),
    is_active = COALESCE($3, is_active),
    updated_at = $4
WHERE id::text = $1
RETURNING ` + adminColumns
	return r.scanOne(r.db.QueryRowContext(ctx, q, id, role, active, time.Now().UTC()))
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *AdminRepository) scanOne(row *sql.Row) (*domain.AdminRecord, error) {
	rec, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("admin row: %w", err)
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAdmin(s scanner) (*domain.AdminRecord, error) {
	var (
		rec  domain.AdminRecord
		id   int64
		role string
	)
	if err := s.Scan(&id, &rec.UserID, &rec.Email, &role, &rec.IsActive, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.ID = fmt.Sprintf("%d", id)
	rec.Role = domain.Role(role)
	return &rec, nil
}
