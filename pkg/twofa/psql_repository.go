package twofa

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTwoFARepository implements TwoFARepository using PostgreSQL
type PostgresTwoFARepository struct {
	db *pgxpool.Pool
}

func NewPostgresTwoFARepository(db *pgxpool.Pool) *PostgresTwoFARepository {
	return &PostgresTwoFARepository{db: db}
}

func (r *PostgresTwoFARepository) UpsertEmailOtp(ctx context.Context, entity EmailOtpEntity) error {
	query := `
		INSERT INTO email_otps (user_id, purpose, secret, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, purpose)
		DO UPDATE SET secret = $3, issued_at = $4, expires_at = $5
	`

	_, err := r.db.Exec(ctx, query,
		entity.UserID,
		entity.Purpose,
		entity.Secret,
		entity.IssuedAt,
		entity.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert email otp: %w", err)
	}

	return nil
}

func (r *PostgresTwoFARepository) GetEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) (EmailOtpEntity, error) {
	query := `
		SELECT user_id, purpose, secret, issued_at, expires_at
		FROM email_otps
		WHERE user_id = $1
		AND purpose = $2
	`

	var entity EmailOtpEntity
	err := r.db.QueryRow(ctx, query, userID, purpose).Scan(
		&entity.UserID,
		&entity.Purpose,
		&entity.Secret,
		&entity.IssuedAt,
		&entity.ExpiresAt,
	)
	if err != nil {
		return EmailOtpEntity{}, fmt.Errorf("failed to get email otp: %w", err)
	}

	return entity, nil
}

func (r *PostgresTwoFARepository) DeleteEmailOtp(ctx context.Context, userID uuid.UUID, purpose string) error {
	query := `
		DELETE FROM email_otps
		WHERE user_id = $1
		AND purpose = $2
	`

	_, err := r.db.Exec(ctx, query, userID, purpose)
	if err != nil {
		return fmt.Errorf("failed to delete email otp: %w", err)
	}

	return nil
}

func (r *PostgresTwoFARepository) GetTotpSecret(ctx context.Context, userID uuid.UUID) (string, error) {
	query := `
		SELECT totp_secret
		FROM profiles
		WHERE user_id = $1
		AND totp_secret IS NOT NULL
	`

	var secret string
	err := r.db.QueryRow(ctx, query, userID).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("failed to get totp secret: %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("no totp secret for user %s", userID)
	}

	return secret, nil
}

func (r *PostgresTwoFARepository) SetTotpSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	query := `
		UPDATE profiles
		SET totp_secret = $2
		WHERE user_id = $1
	`

	_, err := r.db.Exec(ctx, query, userID, secret)
	if err != nil {
		return fmt.Errorf("failed to set totp secret: %w", err)
	}

	return nil
}
