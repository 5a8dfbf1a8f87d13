package retention

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/navyasetu/varunnetra/internal/domain"
	"github.com/navyasetu/varunnetra/internal/store"
)

type repoExpirer struct {
	repo store.Repository
	mu   sync.Mutex
	ids  []string
}

func (e *repoExpirer) ExpireSession(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	e.ids = append(e.ids, sessionID)
	e.mu.Unlock()
	return e.repo.DeleteChatSession(ctx, sessionID)
}

func (e *repoExpirer) expired() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ids...)
}

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "retention.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func createSession(t *testing.T, repo store.Repository, id string, updated time.Time) {
	t.Helper()
	err := repo.CreateChatSession(context.Background(), &domain.ChatSession{
		ID:        id,
		UserID:    "anon_0123456789abcdef0123456789abcdef",
		Language:  "en",
		CreatedAt: updated,
		UpdatedAt: updated,
	})
	if err != nil {
		t.Fatalf("CreateChatSession: %v", err)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	repo := newTestRepo(t)
	createSession(t, repo, "idle", time.Now().Add(-2*time.Hour))
	createSession(t, repo, "active", time.Now())

	expirer := &repoExpirer{repo: repo}
	var notified []string
	w := NewWorker(repo, expirer, time.Hour, time.Minute, func(sessionID string) {
		notified = append(notified, sessionID)
	})

	if n := w.Sweep(context.Background()); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if len(notified) != 1 || notified[0] != "idle" {
		t.Fatalf("unexpected callbacks %v", notified)
	}

	if s, _ := repo.GetChatSession(context.Background(), "idle"); s != nil {
		t.Fatal("idle session should be gone")
	}
	if s, _ := repo.GetChatSession(context.Background(), "active"); s == nil {
		t.Fatal("active session should survive")
	}

	// Nothing left to do on the next pass.
	if n := w.Sweep(context.Background()); n != 0 {
		t.Fatalf("expected empty sweep, got %d", n)
	}
}

func TestSweepSkipsFailedExpiry(t *testing.T) {
	repo := newTestRepo(t)
	createSession(t, repo, "idle", time.Now().Add(-2*time.Hour))

	calls := 0
	w := NewWorker(repo, expirerFunc(func(context.Context, string) error {
		return store.ErrNotFound
	}), time.Hour, 0, func(string) { calls++ })

	if n := w.Sweep(context.Background()); n != 0 {
		t.Fatalf("expected 0 cleaned, got %d", n)
	}
	if calls != 0 {
		t.Fatal("callback must not run for failed expiry")
	}
	if w.interval != DefaultInterval {
		t.Fatalf("expected default interval, got %v", w.interval)
	}
}

func TestStartSweepsOnTicker(t *testing.T) {
	repo := newTestRepo(t)
	createSession(t, repo, "idle", time.Now().Add(-2*time.Hour))

	expirer := &repoExpirer{repo: repo}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewWorker(repo, expirer, time.Hour, 10*time.Millisecond, nil).Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(expirer.expired()) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("worker never swept")
}

type expirerFunc func(ctx context.Context, sessionID string) error

func (f expirerFunc) ExpireSession(ctx context.Context, sessionID string) error {
	return f(ctx, sessionID)
}
