package devices

import (
	"context"
	"errors"
	"fmt"

	"prism/internal/database"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no device session matches the given token.
var ErrNotFound = errors.New("device session not found")

// Repository persists device sessions in Postgres.
type Repository struct {
	db database.Service
}

// NewRepository creates a device session repository.
func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

// Create records a new device session and returns it.
func (r *Repository) Create(ctx context.Context, userID, sessionToken string, info Info) (*Device, error) {
	query := `
		INSERT INTO user_devices (user_id, session_token, device_name, os, browser, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, login_time, last_activity`

	d := &Device{
		UserID:       userID,
		SessionToken: sessionToken,
		DeviceName:   info.DeviceName,
		OS:           info.OS,
		Browser:      info.Browser,
		IPAddress:    info.IPAddress,
		IsActive:     true,
	}
	err := r.db.QueryRow(ctx, query, userID, sessionToken, info.DeviceName, info.OS, info.Browser, info.IPAddress).
		Scan(&d.ID, &d.LoginTime, &d.LastActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to create device session: %w", err)
	}
	return d, nil
}

// GetByToken returns the active device session for the given token.
func (r *Repository) GetByToken(ctx context.Context, sessionToken string) (*Device, error) {
	query := `
		SELECT id, user_id, session_token, device_name, os, browser, COALESCE(ip_address, ''), login_time, last_activity, is_active
		FROM user_devices
		WHERE session_token = $1 AND is_active = TRUE`

	d := &Device{}
	err := r.db.QueryRow(ctx, query, sessionToken).Scan(
		&d.ID, &d.UserID, &d.SessionToken, &d.DeviceName, &d.OS, &d.Browser,
		&d.IPAddress, &d.LoginTime, &d.LastActivity, &d.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device session: %w", err)
	}
	return d, nil
}

// ListByUser returns all active device sessions for a user, newest login first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Device, error) {
	query := `
		SELECT id, user_id, session_token, device_name, os, browser, COALESCE(ip_address, ''), login_time, last_activity, is_active
		FROM user_devices
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY login_time DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var d Device
		err := rows.Scan(&d.ID, &d.UserID, &d.SessionToken, &d.DeviceName, &d.OS, &d.Browser,
			&d.IPAddress, &d.LoginTime, &d.LastActivity, &d.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device session: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Touch bumps last_activity for the session token.
func (r *Repository) Touch(ctx context.Context, sessionToken string) error {
	_, err := r.db.Exec(ctx, `UPDATE user_devices SET last_activity = NOW() WHERE session_token = $1`, sessionToken)
	if err != nil {
		return fmt.Errorf("failed to touch device session: %w", err)
	}
	return nil
}

// Deactivate retires a single device session owned by the user.
func (r *Repository) Deactivate(ctx context.Context, userID string, deviceID int64) (string, error) {
	query := `
		UPDATE user_devices SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
		RETURNING session_token`

	var token string
	err := r.db.QueryRow(ctx, query, deviceID, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to deactivate device session: %w", err)
	}
	return token, nil
}

// DeactivateByToken retires the session identified by its token.
func (r *Repository) DeactivateByToken(ctx context.Context, sessionToken string) error {
	tag, err := r.db.Exec(ctx, `UPDATE user_devices SET is_active = FALSE WHERE session_token = $1 AND is_active = TRUE`, sessionToken)
	if err != nil {
		return fmt.Errorf("failed to deactivate device session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateAllExcept retires every active session of the user except the
// one identified by keepToken, returning the retired tokens.
func (r *Repository) DeactivateAllExcept(ctx context.Context, userID, keepToken string) ([]string, error) {
	query := `
		UPDATE user_devices SET is_active = FALSE
		WHERE user_id = $1 AND session_token <> $2 AND is_active = TRUE
		RETURNING session_token`

	rows, err := r.db.Query(ctx, query, userID, keepToken)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate device sessions: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan session token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
