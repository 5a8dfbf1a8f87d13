// Package retention removes chat sessions whose screens were abandoned.
package retention

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/navyasetu/varunnetra/internal/store"
)

// DefaultInterval is the sweep period used when none is configured.
const DefaultInterval = 5 * time.Minute

// Expirer deletes one session and notifies its live listeners.
type Expirer interface {
	ExpireSession(ctx context.Context, sessionID string) error
}

// CleanupCallback is called when a session is cleaned up by the TTL worker.
type CleanupCallback func(sessionID string)

// Worker sweeps chat sessions idle for longer than ttl.
type Worker struct {
	repo      store.Repository
	expirer   Expirer
	ttl       time.Duration
	interval  time.Duration
	onCleanup CleanupCallback
}

// NewWorker creates a TTL worker. onCleanup may be nil.
func NewWorker(repo store.Repository, expirer Expirer, ttl, interval time.Duration, onCleanup CleanupCallback) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		repo:      repo,
		expirer:   expirer,
		ttl:       ttl,
		interval:  interval,
		onCleanup: onCleanup,
	}
}

// Start runs the sweep in a background goroutine until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		slog.Info("TTL worker started", "interval", w.interval, "ttl", w.ttl)

		for {
			select {
			case <-ticker.C:
				w.Sweep(ctx)
			case <-ctx.Done():
				slog.Info("TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Sweep expires every idle session once and returns how many were removed.
func (w *Worker) Sweep(ctx context.Context) int {
	expired, err := w.repo.GetExpiredChatSessions(ctx, w.ttl)
	if err != nil {
		slog.Error("TTL worker failed to get expired sessions", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	slog.Info("TTL worker found expired sessions", "count", len(expired))

	cleaned := 0
	for _, session := range expired {
		if err := w.expirer.ExpireSession(ctx, session.ID); err != nil {
			// The visitor may have ended it between the query and now.
			if !errors.Is(err, store.ErrNotFound) {
				slog.Warn("TTL worker failed to expire session",
					"error", err,
					"session_id", session.ID,
					"user_id", session.UserID)
			}
			continue
		}
		cleaned++
		slog.Info("TTL worker expired chat session",
			"session_id", session.ID,
			"user_id", session.UserID,
			"idle_since", session.UpdatedAt)

		if w.onCleanup != nil {
			w.onCleanup(session.ID)
		}
	}

	slog.Info("TTL worker cleanup completed", "cleaned", cleaned)
	return cleaned
}
