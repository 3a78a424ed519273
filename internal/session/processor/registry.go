package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"whatsapp-hub/internal/observability"
	"whatsapp-hub/internal/store"

	"github.com/google/uuid"
)

var ErrInvalidStatus = errors.New("invalid session status")

// SessionState is the registry's view of one user's transport connection
type SessionState struct {
	UserID     uuid.UUID  `json:"user_id"`
	Status     string     `json:"status"`
	LastPingAt *time.Time `json:"last_ping_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Registry tracks per-user transport connection state. Reads hit the
// in-memory map first and fall back to the store, so status checks stay
// cheap while state survives restarts.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]SessionState

	store  SessionStore
	logger *observability.Logger
}

func NewRegistry(sessionStore SessionStore, logger *observability.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]SessionState),
		store:    sessionStore,
		logger:   logger,
	}
}

func validStatus(status string) bool {
	switch status {
	case store.SessionStatusConnected, store.SessionStatusPending, store.SessionStatusDisconnected:
		return true
	}
	return false
}

// SetStatus persists the new status and updates the in-memory state. The
// registry is only updated after the store accepts the write.
func (r *Registry) SetStatus(ctx context.Context, userID uuid.UUID, status string, lastPingAt *time.Time) (SessionState, error) {
	if !validStatus(status) {
		return SessionState{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	session, err := r.store.UpsertWhatsAppSession(ctx, userID, status, lastPingAt)
	if err != nil {
		return SessionState{}, fmt.Errorf("failed to persist session status: %w", err)
	}

	state := stateFromRecord(session)
	r.mu.Lock()
	r.sessions[userID] = state
	r.mu.Unlock()

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "session_status", Value: status},
	)
	r.logger.Info(ctx, "session status updated")

	return state, nil
}

// GetStatus returns the user's transport state. Users with no session yet
// read as DISCONNECTED.
func (r *Registry) GetStatus(ctx context.Context, userID uuid.UUID) (SessionState, error) {
	r.mu.RLock()
	state, ok := r.sessions[userID]
	r.mu.RUnlock()
	if ok {
		return state, nil
	}

	session, err := r.store.GetWhatsAppSessionByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return SessionState{UserID: userID, Status: store.SessionStatusDisconnected}, nil
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("failed to get session status: %w", err)
	}

	state = stateFromRecord(session)
	r.mu.Lock()
	r.sessions[userID] = state
	r.mu.Unlock()
	return state, nil
}

// Disconnect marks the user's transport as disconnected. Tearing down the
// actual socket is the transport's responsibility.
func (r *Registry) Disconnect(ctx context.Context, userID uuid.UUID) (SessionState, error) {
	return r.SetStatus(ctx, userID, store.SessionStatusDisconnected, nil)
}

func stateFromRecord(session store.WhatsAppSession) SessionState {
	return SessionState{
		UserID:     session.UserID,
		Status:     session.Status,
		LastPingAt: session.LastPingAt,
		UpdatedAt:  session.UpdatedAt,
	}
}
