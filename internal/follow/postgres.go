package follow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"prism/internal/database"
)

// Repository is the PostgreSQL ledger. Every mutating operation is a single
// statement or a single transaction, so pair uniqueness and edge/request
// exclusivity hold under concurrent requests.
type Repository struct {
	db database.Service
}

func NewRepository(db database.Service) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateEdge(ctx context.Context, followerID, followedID string) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO follows (id, follower_id, followed_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`, uuid.New().String(), followerID, followedID)
	if err != nil {
		return fmt.Errorf("insert follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyFollowing
	}
	return nil
}

func (r *Repository) DeleteEdge(ctx context.Context, followerID, followedID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2
	`, followerID, followedID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFollowingOrRequested
	}
	return nil
}

// CreateRequest inserts the pending request only while no edge exists for
// the pair. The insert can block on the pair's unique index while a promote
// holds the old request row; by the time it proceeds the guard was evaluated
// against a stale snapshot, so the edge is re-checked in a fresh statement
// and the request rolled back if one appeared.
func (r *Repository) CreateRequest(ctx context.Context, requesterID, recipientID string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO follow_requests (id, requester_id, recipient_id)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (
				SELECT 1 FROM follows WHERE follower_id = $2 AND followed_id = $3
			)
			ON CONFLICT (requester_id, recipient_id) DO NOTHING
		`, uuid.New().String(), requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("insert follow request: %w", err)
		}

		var following bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
			)
		`, requesterID, recipientID).Scan(&following)
		if err != nil {
			return fmt.Errorf("check follow edge: %w", err)
		}
		if following {
			return ErrAlreadyFollowing
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyRequested
		}
		return nil
	})
}

func (r *Repository) DeleteRequest(ctx context.Context, requesterID, recipientID string) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM follow_requests WHERE requester_id = $1 AND recipient_id = $2
	`, requesterID, recipientID)
	if err != nil {
		return fmt.Errorf("delete follow request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *Repository) PromoteRequest(ctx context.Context, requesterID, recipientID string) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM follow_requests WHERE requester_id = $1 AND recipient_id = $2
		`, requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("consume follow request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRequestNotFound
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO follows (id, follower_id, followed_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (follower_id, followed_id) DO NOTHING
		`, uuid.New().String(), requesterID, recipientID)
		if err != nil {
			return fmt.Errorf("create follow edge: %w", err)
		}
		return nil
	})
}

func (r *Repository) HasEdge(ctx context.Context, followerID, followedID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
		)
	`, followerID, followedID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow edge: %w", err)
	}
	return exists, nil
}

func (r *Repository) HasRequest(ctx context.Context, requesterID, recipientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follow_requests WHERE requester_id = $1 AND recipient_id = $2
		)
	`, requesterID, recipientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check follow request: %w", err)
	}
	return exists, nil
}

func (r *Repository) Followers(ctx context.Context, userID string) ([]Account, error) {
	return r.queryAccounts(ctx, `
		SELECT u.id, u.username, u.is_private
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (r *Repository) Following(ctx context.Context, userID string) ([]Account, error) {
	return r.queryAccounts(ctx, `
		SELECT u.id, u.username, u.is_private
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
}

func (r *Repository) PendingRequests(ctx context.Context, recipientID string) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, requester_id, recipient_id, created_at
		FROM follow_requests
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	reqs := []Request{}
	for rows.Next() {
		var req Request
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.RecipientID, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan follow request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (r *Repository) Counts(ctx context.Context, userID string) (int64, int64, error) {
	var followers, following int64
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followed_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, userID).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("count follows: %w", err)
	}
	return followers, following, nil
}

// GetAccount implements Directory against the shared users table.
func (r *Repository) GetAccount(ctx context.Context, id string) (*Account, error) {
	var acc Account
	err := r.db.QueryRow(ctx, `
		SELECT id, username, is_private FROM users WHERE id = $1
	`, id).Scan(&acc.ID, &acc.Username, &acc.IsPrivate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

func (r *Repository) queryAccounts(ctx context.Context, query string, args ...any) ([]Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		var acc Account
		if err := rows.Scan(&acc.ID, &acc.Username, &acc.IsPrivate); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}
