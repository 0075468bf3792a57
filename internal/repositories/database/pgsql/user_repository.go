package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akshayde/account_management_app/internal/apperrors"
	"github.com/akshayde/account_management_app/internal/core/domain"
	portsrepo "github.com/akshayde/account_management_app/internal/core/ports/repositories"
	"github.com/akshayde/account_management_app/internal/models"
	"github.com/akshayde/account_management_app/internal/utils/mapping"
)

const userColumns = `user_id, name, email, password_hash, avatar_url, created_at, last_updated_at, deleted_at, refresh_token_hash, refresh_token_expiry_time`

// PgxUserRepository is the pgx-backed implementation of the user repository.
type PgxUserRepository struct {
	BaseRepository
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements the facade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

// SaveUser persists a new user. The unique index on lower(email) makes the
// uniqueness check atomic; a violation surfaces as a Conflict error.
func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
        INSERT INTO users (user_id, name, email, password_hash, avatar_url, created_at, last_updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7);
    `
	_, err := r.Pool.Exec(ctx, query,
		modelUser.UserID,
		modelUser.Name,
		modelUser.Email,
		modelUser.PasswordHash,
		modelUser.AvatarURL,
		modelUser.CreatedAt,
		modelUser.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("email " + user.Email + " already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FindUserByID retrieves an active user by ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 AND deleted_at IS NULL;`
	return r.queryOne(ctx, query, userID)
}

// FindUserByEmail retrieves an active user by email.
func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL;`
	return r.queryOne(ctx, query, email)
}

// FindDeletedUserByEmail retrieves a soft-deleted user by email. Active users
// are invisible to this lookup.
func (r *PgxUserRepository) FindDeletedUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NOT NULL;`
	return r.queryOne(ctx, query, email)
}

// UpdateUser updates the mutable profile fields of an active user.
func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	modelUser := mapping.ToModelUser(user)
	query := `
        UPDATE users
        SET name = $1, email = $2, password_hash = $3, avatar_url = $4, last_updated_at = $5
        WHERE user_id = $6 AND deleted_at IS NULL;
    `
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelUser.Name,
		modelUser.Email,
		modelUser.PasswordHash,
		modelUser.AvatarURL,
		modelUser.LastUpdatedAt,
		modelUser.UserID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("email " + user.Email + " already exists")
		}
		return fmt.Errorf("failed to execute update user query: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

// UpdateRefreshToken stores the hash and expiry of the user's refresh token.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	query := `
        UPDATE users
        SET refresh_token_hash = $1, refresh_token_expiry_time = $2
        WHERE user_id = $3 AND deleted_at IS NULL;
    `
	cmdTag, err := r.Pool.Exec(ctx, query, refreshTokenHash, refreshTokenExpiryTime, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found or already deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token of a user. Clearing is
// permitted regardless of soft-delete state (destroy clears it after the
// account is marked deleted).
func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
        UPDATE users
        SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL
        WHERE user_id = $1;
    `
	_, err := r.Pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// MarkUserDeleted marks a user as deleted (soft delete) and discards the
// stored refresh token in the same transaction, so a failed token clear never
// leaves a half-deactivated account behind.
func (r *PgxUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	cmdTag, err := tx.Exec(ctx, `
        UPDATE users
        SET deleted_at = $1, last_updated_at = $1
        WHERE user_id = $2 AND deleted_at IS NULL;
    `, deletedAt, userID)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to mark user as deleted: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("user not found or already deleted: %w", apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE users
        SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL
        WHERE user_id = $1;
    `, userID); err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return r.Commit(ctx, tx)
}

// ReplacePassword stores a new password hash and discards the stored refresh
// token in the same transaction. A holder of the old refresh token cannot
// keep a session alive across a password change.
func (r *PgxUserRepository) ReplacePassword(ctx context.Context, userID string, passwordHash string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	cmdTag, err := tx.Exec(ctx, `
        UPDATE users
        SET password_hash = $1, last_updated_at = $2
        WHERE user_id = $3 AND deleted_at IS NULL;
    `, passwordHash, updatedAt, userID)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to replace password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("user not found or already deleted: %w", apperrors.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE users
        SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL
        WHERE user_id = $1;
    `, userID); err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return r.Commit(ctx, tx)
}

// RestoreUser clears the soft-delete marker on a user.
func (r *PgxUserRepository) RestoreUser(ctx context.Context, userID string, restoredAt time.Time) error {
	query := `
        UPDATE users
        SET deleted_at = NULL, last_updated_at = $1
        WHERE user_id = $2 AND deleted_at IS NOT NULL;
    `
	cmdTag, err := r.Pool.Exec(ctx, query, restoredAt, userID)
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user not found or not deleted: %w", apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) queryOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var modelUser models.User
	err := r.Pool.QueryRow(ctx, query, arg).Scan(
		&modelUser.UserID,
		&modelUser.Name,
		&modelUser.Email,
		&modelUser.PasswordHash,
		&modelUser.AvatarURL,
		&modelUser.CreatedAt,
		&modelUser.LastUpdatedAt,
		&modelUser.DeletedAt,
		&modelUser.RefreshTokenHash,
		&modelUser.RefreshTokenExpiryTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	domainUser := mapping.ToDomainUser(modelUser)
	return &domainUser, nil
}
