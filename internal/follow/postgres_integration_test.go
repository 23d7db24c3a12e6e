package follow

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// poolService adapts a test pool to the database.Service surface the
// repository consumes.
type poolService struct {
	pool *pgxpool.Pool
}

func (s *poolService) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.pool.Query(ctx, sql, args...)
}

func (s *poolService) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, sql, args...)
}

func (s *poolService) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, sql, args...)
}

func (s *poolService) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (s *poolService) Health() map[string]string { return map[string]string{"status": "up"} }
func (s *poolService) Close()                    { s.pool.Close() }

func setupRepository(t *testing.T) (*Repository, *poolService) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("prism_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	db := &poolService{pool: pool}
	return NewRepository(db), db
}

func createUser(t *testing.T, db *poolService, username string, private bool) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(context.Background(), `
		INSERT INTO users (id, username, email, password_hash, is_private, is_verified)
		VALUES ($1, $2, $3, 'x', $4, TRUE)
	`, id, username, fmt.Sprintf("%s@example.com", username), private)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return id
}

func TestRepository_EdgeLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, db := setupRepository(t)
	ctx := context.Background()

	follower := createUser(t, db, "follower", false)
	followed := createUser(t, db, "followed", false)

	if err := repo.CreateEdge(ctx, follower, followed); err != nil {
		t.Fatalf("CreateEdge failed: %v", err)
	}
	if err := repo.CreateEdge(ctx, follower, followed); err != ErrAlreadyFollowing {
		t.Errorf("Expected ErrAlreadyFollowing, got %v", err)
	}

	has, err := repo.HasEdge(ctx, follower, followed)
	if err != nil {
		t.Fatalf("HasEdge failed: %v", err)
	}
	if !has {
		t.Error("Expected edge to exist")
	}

	// Direction matters.
	has, _ = repo.HasEdge(ctx, followed, follower)
	if has {
		t.Error("Reverse edge must not exist")
	}

	followers, following, err := repo.Counts(ctx, followed)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if followers != 1 || following != 0 {
		t.Errorf("Expected 1/0, got %d/%d", followers, following)
	}

	if err := repo.DeleteEdge(ctx, follower, followed); err != nil {
		t.Fatalf("DeleteEdge failed: %v", err)
	}
	if err := repo.DeleteEdge(ctx, follower, followed); err != ErrNotFollowingOrRequested {
		t.Errorf("Expected ErrNotFollowingOrRequested, got %v", err)
	}
}

func TestRepository_RequestExclusivity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, db := setupRepository(t)
	ctx := context.Background()

	requester := createUser(t, db, "requester", false)
	recipient := createUser(t, db, "recipient", true)

	if err := repo.CreateRequest(ctx, requester, recipient); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if err := repo.CreateRequest(ctx, requester, recipient); err != ErrAlreadyRequested {
		t.Errorf("Expected ErrAlreadyRequested, got %v", err)
	}

	if err := repo.PromoteRequest(ctx, requester, recipient); err != nil {
		t.Fatalf("PromoteRequest failed: %v", err)
	}

	// After promotion: edge exists, request is gone, and a new request for
	// the pair is refused because of the edge.
	has, _ := repo.HasEdge(ctx, requester, recipient)
	if !has {
		t.Error("Expected edge after promote")
	}
	has, _ = repo.HasRequest(ctx, requester, recipient)
	if has {
		t.Error("Request should be consumed by promote")
	}
	if err := repo.CreateRequest(ctx, requester, recipient); err != ErrAlreadyFollowing {
		t.Errorf("Expected ErrAlreadyFollowing while edge exists, got %v", err)
	}

	if err := repo.PromoteRequest(ctx, requester, recipient); err != ErrRequestNotFound {
		t.Errorf("Expected ErrRequestNotFound on second promote, got %v", err)
	}
}

func TestRepository_PendingAndLists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, db := setupRepository(t)
	ctx := context.Background()

	owner := createUser(t, db, "owner", true)
	first := createUser(t, db, "first", false)
	second := createUser(t, db, "second", false)

	if err := repo.CreateRequest(ctx, first, owner); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if err := repo.CreateRequest(ctx, second, owner); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	pending, err := repo.PendingRequests(ctx, owner)
	if err != nil {
		t.Fatalf("PendingRequests failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending requests, got %d", len(pending))
	}

	if err := repo.PromoteRequest(ctx, first, owner); err != nil {
		t.Fatalf("PromoteRequest failed: %v", err)
	}
	if err := repo.DeleteRequest(ctx, second, owner); err != nil {
		t.Fatalf("DeleteRequest failed: %v", err)
	}

	followers, err := repo.Followers(ctx, owner)
	if err != nil {
		t.Fatalf("Followers failed: %v", err)
	}
	if len(followers) != 1 {
		t.Fatalf("Expected 1 follower, got %d", len(followers))
	}
	if followers[0].Username != "first" {
		t.Errorf("Expected follower first, got %s", followers[0].Username)
	}

	following, err := repo.Following(ctx, first)
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(following) != 1 || following[0].ID != owner {
		t.Errorf("Expected first to follow owner, got %+v", following)
	}
}

func TestRepository_GetAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, db := setupRepository(t)
	ctx := context.Background()

	id := createUser(t, db, "someone", true)

	acc, err := repo.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acc.Username != "someone" || !acc.IsPrivate {
		t.Errorf("Unexpected account: %+v", acc)
	}

	if _, err := repo.GetAccount(ctx, uuid.New().String()); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

// A request insert racing a promote of the same pair must never leave both
// the edge and a pending request behind, whichever side commits first.
func TestRepository_ConcurrentRequestAndPromote(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	repo, db := setupRepository(t)
	ctx := context.Background()

	requester := createUser(t, db, "racer", false)
	recipient := createUser(t, db, "target", true)

	for round := 0; round < 20; round++ {
		if err := repo.CreateRequest(ctx, requester, recipient); err != nil {
			t.Fatalf("Round %d: CreateRequest failed: %v", round, err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.PromoteRequest(ctx, requester, recipient)
		}()
		go func() {
			defer wg.Done()
			_ = repo.CreateRequest(ctx, requester, recipient)
		}()
		wg.Wait()

		hasEdge, err := repo.HasEdge(ctx, requester, recipient)
		if err != nil {
			t.Fatalf("Round %d: HasEdge failed: %v", round, err)
		}
		hasReq, err := repo.HasRequest(ctx, requester, recipient)
		if err != nil {
			t.Fatalf("Round %d: HasRequest failed: %v", round, err)
		}
		if hasEdge && hasReq {
			t.Fatalf("Round %d: edge and request coexist for the same pair", round)
		}

		_, _ = db.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`, requester, recipient)
		_, _ = db.Exec(ctx, `DELETE FROM follow_requests WHERE requester_id = $1 AND recipient_id = $2`, requester, recipient)
	}
}
