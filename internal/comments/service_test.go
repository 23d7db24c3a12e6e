package comments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"prism/internal/notifications"
)

type commentRow struct {
	id        int64
	postID    int64
	userID    string
	content   string
	createdAt time.Time
}

// commentsDB is an in-memory stand-in for the database.Service surface
// the comments service touches, dispatching on the statement text.
type commentsDB struct {
	mu      sync.Mutex
	nextID  int64
	authors map[int64]string
	users   map[string]string
	rows    []commentRow
}

func newCommentsDB() *commentsDB {
	return &commentsDB{
		authors: map[int64]string{},
		users:   map[string]string{},
	}
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func errRow(err error) fakeRow {
	return fakeRow{scan: func(...any) error { return err }}
}

func (db *commentsDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch {
	case strings.Contains(sql, "SELECT user_id FROM posts"):
		author, ok := db.authors[args[0].(int64)]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*string) = author
			return nil
		}}
	case strings.Contains(sql, "INSERT INTO comments"):
		db.nextID++
		row := commentRow{
			id:        db.nextID,
			postID:    args[0].(int64),
			userID:    args[1].(string),
			content:   args[2].(string),
			createdAt: time.Now(),
		}
		db.rows = append(db.rows, row)
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int64) = row.id
			*dest[1].(*time.Time) = row.createdAt
			return nil
		}}
	case strings.Contains(sql, "SELECT c.user_id, p.user_id"):
		for _, row := range db.rows {
			if row.id == args[0].(int64) {
				commentOwner := row.userID
				postOwner := db.authors[row.postID]
				return fakeRow{scan: func(dest ...any) error {
					*dest[0].(*string) = commentOwner
					*dest[1].(*string) = postOwner
					return nil
				}}
			}
		}
		return errRow(pgx.ErrNoRows)
	case strings.Contains(sql, "SELECT username FROM users"):
		name, ok := db.users[args[0].(string)]
		if !ok {
			return errRow(pgx.ErrNoRows)
		}
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*string) = name
			return nil
		}}
	}
	return errRow(fmt.Errorf("unexpected query: %s", sql))
}

// fakeRows serves ListByPost. The embedded interface stays nil; only the
// methods the service calls are implemented.
type fakeRows struct {
	pgx.Rows
	rows []commentRow
	db   *commentsDB
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	*dest[0].(*int64) = row.id
	*dest[1].(*int64) = row.postID
	*dest[2].(*string) = row.userID
	*dest[3].(*string) = r.db.users[row.userID]
	*dest[4].(*string) = row.content
	*dest[5].(*time.Time) = row.createdAt
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (db *commentsDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !strings.Contains(sql, "FROM comments c") {
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}
	var matched []commentRow
	for _, row := range db.rows {
		if row.postID == args[0].(int64) {
			matched = append(matched, row)
		}
	}
	return &fakeRows{rows: matched, db: db}, nil
}

func (db *commentsDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if !strings.Contains(sql, "DELETE FROM comments") {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
	}
	for i, row := range db.rows {
		if row.id == args[0].(int64) {
			db.rows = append(db.rows[:i], db.rows[i+1:]...)
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (db *commentsDB) WithTx(context.Context, func(tx pgx.Tx) error) error {
	return errors.New("unexpected WithTx")
}

func (db *commentsDB) Health() map[string]string { return map[string]string{"status": "up"} }
func (db *commentsDB) Close()                    {}

type emittedNotification struct {
	recipientID string
	actorID     string
	typ         notifications.Type
	message     string
}

type recordingNotifier struct {
	emitted []emittedNotification
}

func (n *recordingNotifier) Emit(_ context.Context, recipientID, actorID string, typ notifications.Type, message string, _ *int64) error {
	n.emitted = append(n.emitted, emittedNotification{recipientID, actorID, typ, message})
	return nil
}

func newTestService() (Service, *commentsDB, *recordingNotifier) {
	db := newCommentsDB()
	db.users["alice"] = "alice"
	db.users["bob"] = "bob"
	db.users["carol"] = "carol"
	db.authors[1] = "bob"
	notifier := &recordingNotifier{}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db, notifier, quiet), db, notifier
}

func TestCreate_NotifiesPostAuthor(t *testing.T) {
	svc, _, notifier := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "alice", 1, CreateCommentRequest{Content: "nice shot"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID == 0 || c.PostID != 1 || c.UserID != "alice" || c.Content != "nice shot" {
		t.Errorf("Unexpected comment: %+v", c)
	}

	if len(notifier.emitted) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifier.emitted))
	}
	n := notifier.emitted[0]
	if n.recipientID != "bob" || n.typ != notifications.TypeComment {
		t.Errorf("Unexpected notification: %+v", n)
	}
	if n.message != "alice commented on your post" {
		t.Errorf("Unexpected message: %q", n.message)
	}
}

func TestCreate_OwnPostStaysSilent(t *testing.T) {
	svc, _, notifier := newTestService()

	if _, err := svc.Create(context.Background(), "bob", 1, CreateCommentRequest{Content: "hi"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(notifier.emitted) != 0 {
		t.Errorf("Expected no notification for own post, got %d", len(notifier.emitted))
	}
}

func TestCreate_UnknownPost(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), "alice", 99, CreateCommentRequest{Content: "hi"}); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("Expected ErrPostNotFound, got %v", err)
	}
}

func TestDelete_ByCommentAuthor(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "alice", 1, CreateCommentRequest{Content: "hi"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, "alice", c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	list, err := svc.ListByPost(ctx, 1)
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected 0 comments after delete, got %d", len(list))
	}
}

func TestDelete_ByPostOwner(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "alice", 1, CreateCommentRequest{Content: "hi"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, "bob", c.ID); err != nil {
		t.Fatalf("Delete by post owner failed: %v", err)
	}
}

func TestDelete_ByThirdParty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	c, err := svc.Create(ctx, "alice", 1, CreateCommentRequest{Content: "hi"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, "carol", c.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}

	list, _ := svc.ListByPost(ctx, 1)
	if len(list) != 1 {
		t.Errorf("Expected comment to survive forbidden delete, got %d comments", len(list))
	}
}

func TestDelete_UnknownComment(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.Delete(context.Background(), "alice", 99); !errors.Is(err, ErrCommentNotFound) {
		t.Errorf("Expected ErrCommentNotFound, got %v", err)
	}
}

func TestListByPost_OldestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "alice", 1, CreateCommentRequest{Content: "first"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, "carol", 1, CreateCommentRequest{Content: "second"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := svc.ListByPost(ctx, 1)
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 comments, got %d", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("Expected oldest first order, got %d then %d", list[0].ID, list[1].ID)
	}
	if list[0].Username != "alice" || list[1].Username != "carol" {
		t.Errorf("Unexpected usernames: %q, %q", list[0].Username, list[1].Username)
	}
}
