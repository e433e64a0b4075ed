package app

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"livemap.onebusaway.org/internal/logging"
	"livemap.onebusaway.org/internal/tracking"
)

// ErrSessionNotFound is returned for unknown or already closed session ids.
var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry owns the live map sessions. Every session receives each
// realtime snapshot through Broadcast.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*tracking.Session
	shapes   tracking.ShapeSource
	config   tracking.Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewSessionRegistry(shapes tracking.ShapeSource, config tracking.Config, logger *slog.Logger) *SessionRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRegistry{
		sessions: make(map[string]*tracking.Session),
		shapes:   shapes,
		config:   config,
		logger:   logger.With(slog.String("component", "session_registry")),
		now:      time.Now,
	}
}

// Create starts a session and, when initial is non-nil, seeds it with the
// latest snapshot so the first render is not empty.
func (r *SessionRegistry) Create(initial *tracking.Snapshot) *tracking.Session {
	session := tracking.NewSession(tracking.SessionOptions{
		ID:     uuid.NewString(),
		Config: r.config,
		Shapes: r.shapes,
		Logger: r.logger,
		Now:    r.now,
	})
	if initial != nil {
		session.Apply(*initial)
	}

	r.mu.Lock()
	r.sessions[session.ID()] = session
	count := len(r.sessions)
	r.mu.Unlock()

	logging.LogOperation(r.logger, "session_created",
		slog.String("session_id", session.ID()),
		slog.Int("sessions", count))
	return session
}

func (r *SessionRegistry) Get(id string) (*tracking.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete closes and forgets a session.
func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.Close()
	logging.LogOperation(r.logger, "session_closed", slog.String("session_id", id))
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the live session ids in sorted order.
func (r *SessionRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Broadcast applies the snapshot to every live session, one after another.
func (r *SessionRegistry) Broadcast(snapshot tracking.Snapshot) {
	r.mu.RLock()
	sessions := make([]*tracking.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	// Every session validates the same fixes, so the malformed count is a
	// property of the snapshot. A session closed mid-broadcast reports zero.
	var dropped int
	for _, s := range sessions {
		dropped = max(dropped, s.Apply(snapshot).Dropped)
	}
	if dropped > 0 {
		logging.LogOperation(r.logger, "malformed_fixes_dropped",
			slog.Int("dropped", dropped),
			slog.Int("fixes", len(snapshot.Fixes)))
	}
}

// SweepIdle closes sessions whose last viewer activity is older than ttl and
// returns how many were closed.
func (r *SessionRegistry) SweepIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var idle []*tracking.Session
	for id, s := range r.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
		logging.LogOperation(r.logger, "session_expired", slog.String("session_id", s.ID()))
	}
	return len(idle)
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (r *SessionRegistry) RunSweeper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.SweepIdle(ttl)
		case <-ctx.Done():
			return
		}
	}
}

// CloseAll closes every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*tracking.Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
