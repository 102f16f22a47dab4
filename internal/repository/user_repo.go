package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"roombooking/internal/db"
	apperrors "roombooking/internal/errors"
)

type UserRepository interface {
	Create(ctx context.Context, profile *db.Profile) error
	GetByEmail(ctx context.Context, email string) (*db.Profile, error)
	GetByID(ctx context.Context, id string) (*db.Profile, error)
	List(ctx context.Context) ([]db.Profile, error)
	ListByRole(ctx context.Context, roles ...string) ([]db.Profile, error)
	ReplaceRole(ctx context.Context, userID, role string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// effectiveRole toma el rol más alto; sin filas en user_roles el usuario es student.
const effectiveRole = `
	COALESCE((
		SELECT ur.role FROM user_roles ur
		WHERE ur.user_id = p.id
		ORDER BY CASE ur.role WHEN 'admin' THEN 3 WHEN 'manager' THEN 2 ELSE 1 END DESC
		LIMIT 1
	), 'student')`

const profileSelect = `SELECT p.id, p.full_name, p.email, p.phone, p.password_hash, p.created_at, ` + effectiveRole + ` AS role FROM profiles p`

const uniqueViolation = "23505"

func scanProfile(row rowScanner) (db.Profile, error) {
	var p db.Profile
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.Role)
	return p, err
}

// Create inserts the profile together with its single role row.
func (r *userRepository) Create(ctx context.Context, profile *db.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting profile transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO profiles (id, full_name, email, phone, password_hash) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		profile.ID, profile.FullName, profile.Email, profile.Phone, profile.PasswordHash,
	).Scan(&profile.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("profile %s: %w", profile.Email, apperrors.ErrEmailTaken)
		}
		return fmt.Errorf("error inserting profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, profile.ID, profile.Role); err != nil {
		return fmt.Errorf("error inserting role: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing profile: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.Profile, error) {
	return r.getOne(ctx, profileSelect+` WHERE lower(p.email) = lower($1)`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*db.Profile, error) {
	return r.getOne(ctx, profileSelect+` WHERE p.id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, query, arg string) (*db.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", arg, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("error querying profile: %w", err)
	}
	return &p, nil
}

func (r *userRepository) List(ctx context.Context) ([]db.Profile, error) {
	return r.list(ctx, profileSelect+` ORDER BY p.full_name`)
}

func (r *userRepository) ListByRole(ctx context.Context, roles ...string) ([]db.Profile, error) {
	query := `SELECT * FROM (` + profileSelect + `) u WHERE u.role = ANY($1) ORDER BY u.full_name`
	return r.list(ctx, query, pq.Array(roles))
}

func (r *userRepository) list(ctx context.Context, query string, args ...any) ([]db.Profile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying profiles: %w", err)
	}
	defer rows.Close()

	profiles := []db.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating profiles: %w", err)
	}
	return profiles, nil
}

// ReplaceRole borra todos los roles del usuario e inserta role en una sola transacción.
func (r *userRepository) ReplaceRole(ctx context.Context, userID, role string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting role transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("error checking profile: %w", err)
	}
	if !exists {
		return fmt.Errorf("profile %s: %w", userID, apperrors.ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error removing roles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role); err != nil {
		return fmt.Errorf("error inserting role: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing role change: %w", err)
	}
	return nil
}
