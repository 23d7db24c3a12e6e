package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"prism/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")
	ErrEmailExists    = errors.New("email already registered")
)

const userColumns = `id, username, email, password_hash, bio, profile_pic,
	is_verified, is_private, two_factor_enabled, created_at, updated_at`

// Repository handles all database operations for users.
type Repository struct {
	db database.Service
}

func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_private)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Username, u.Email, passwordHash, u.IsPrivate)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return ErrUsernameExists
		}
		if isUniqueViolation(err, "users_email_key") {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// PasswordHash returns the stored bcrypt hash for a user id.
func (r *Repository) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := r.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get password hash: %w", err)
	}
	return hash, nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, hash, id)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkVerified(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile applies the non-nil fields of req and returns the result.
func (r *Repository) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	sets := []string{}
	args := []any{}
	pos := 1

	add := func(col string, val any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, pos))
		args = append(args, val)
		pos++
	}

	if req.Bio != nil {
		add("bio", *req.Bio)
	}
	if req.ProfilePic != nil {
		add("profile_pic", *req.ProfilePic)
	}
	if req.IsPrivate != nil {
		add("is_private", *req.IsPrivate)
	}
	if req.TwoFactorEnabled != nil {
		add("two_factor_enabled", *req.TwoFactorEnabled)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	add("updated_at", time.Now())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users SET %s WHERE id = $%d
		RETURNING `+userColumns,
		strings.Join(sets, ", "), pos)

	return r.scanOne(r.db.QueryRow(ctx, query, args...))
}

// Search finds users whose username contains the query, newest first.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, username, profile_pic, is_private
		FROM users
		WHERE username ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePic, &s.IsPrivate); err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	return r.scanOne(r.db.QueryRow(ctx, query, arg))
}

func (r *Repository) scanOne(row pgx.Row) (*User, error) {
	var u User
	var passwordHash string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &u.Bio, &u.ProfilePic,
		&u.IsVerified, &u.IsPrivate, &u.TwoFactorEnabled, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation matches PostgreSQL unique constraint errors by
// constraint name.
func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") &&
		strings.Contains(msg, constraint)
}
