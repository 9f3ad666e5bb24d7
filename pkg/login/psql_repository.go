package login

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLoginRepository implements LoginRepository using PostgreSQL
type PostgresLoginRepository struct {
	db *pgxpool.Pool
}

func NewPostgresLoginRepository(db *pgxpool.Pool) *PostgresLoginRepository {
	return &PostgresLoginRepository{db: db}
}

func (r *PostgresLoginRepository) FindLoginByEmail(ctx context.Context, email string) (LoginEntity, error) {
	query := `
		SELECT id, email, email_verified, password, created_at, updated_at
		FROM logins
		WHERE LOWER(email) = LOWER($1)
		AND deleted_at IS NULL
	`

	var entity LoginEntity
	err := r.db.QueryRow(ctx, query, email).Scan(
		&entity.ID,
		&entity.Email,
		&entity.EmailVerified,
		&entity.Password,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return LoginEntity{}, fmt.Errorf("failed to find login by email: %w", err)
	}

	return entity, nil
}

func (r *PostgresLoginRepository) GetLoginById(ctx context.Context, id uuid.UUID) (LoginEntity, error) {
	query := `
		SELECT id, email, email_verified, password, created_at, updated_at
		FROM logins
		WHERE id = $1
		AND deleted_at IS NULL
	`

	var entity LoginEntity
	err := r.db.QueryRow(ctx, query, id).Scan(
		&entity.ID,
		&entity.Email,
		&entity.EmailVerified,
		&entity.Password,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return LoginEntity{}, fmt.Errorf("failed to get login by id: %w", err)
	}

	return entity, nil
}

func (r *PostgresLoginRepository) GetProfileByUserId(ctx context.Context, userID uuid.UUID) (ProfileEntity, error) {
	query := `
		SELECT user_id, display_name, two_factor_enabled, totp_secret, created_at
		FROM profiles
		WHERE user_id = $1
	`

	var entity ProfileEntity
	var displayName sql.NullString
	var totpSecret sql.NullString
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&entity.UserID,
		&displayName,
		&entity.TwoFactorEnabled,
		&totpSecret,
		&entity.CreatedAt,
	)
	if err != nil {
		return ProfileEntity{}, fmt.Errorf("failed to get profile by user id: %w", err)
	}

	entity.DisplayName = displayName.String
	entity.DisplayNameValid = displayName.Valid
	entity.TotpSecret = totpSecret.String
	entity.TotpSecretValid = totpSecret.Valid

	return entity, nil
}
