package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the credential store. Lookups report absence with
// common.ErrNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	Delete(ctx context.Context, id int64) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	query := `INSERT INTO users (email, password_hash, name, role)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.Name, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, email, password_hash, name, role, created_at, updated_at
	          FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, email, password_hash, name, role, created_at, updated_at
	          FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	query := `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, string(role), id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateRole: %w", err)
	}
	return requireAffected(res, "pgUserRepository.UpdateRole")
}

// Delete removes the user; articles and comments cascade.
func (r *pgUserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	return requireAffected(res, "pgUserRepository.Delete")
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var role string
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return user, nil
}
