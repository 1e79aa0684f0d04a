// Package session resolves the current identity and owns the bearer
// credential. A Source transitions from unknown to resolved exactly once
// per lifetime; consumers that need to act on the resolved identity
// register through OnResolved instead of polling.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/clipmarket/client/internal/logging"
	"github.com/clipmarket/client/internal/models"
)

// State tracks the lifecycle of a session source.
type State string

const (
	StateUnknown  State = "unknown"
	StateResolved State = "resolved"
	StateRevoked  State = "revoked"
)

var (
	// ErrAlreadyResolved indicates Resolve was called after the session
	// already transitioned out of the unknown state.
	ErrAlreadyResolved = errors.New("session: already resolved")
	// ErrLoginFailed indicates the login response was missing its token
	// or user payload.
	ErrLoginFailed = errors.New("session: malformed login response")
)

// Gateway is the slice of the API client the session source needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Source supplies the current identity to the rest of the client.
type Source struct {
	gateway Gateway
	creds   CredentialStore
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	identity  *models.Identity
	callbacks []func(*models.Identity)
}

// NewSource constructs an unresolved session source.
func NewSource(gateway Gateway, creds CredentialStore, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		gateway: gateway,
		creds:   creds,
		logger:  logger,
		state:   StateUnknown,
	}
}

// userPayload mirrors the backend's user envelope.
type userPayload struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Wallet    int      `json:"wallet"`
	Purchases []string `json:"purchases"`
}

func (u userPayload) identity() models.Identity {
	return models.Identity{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		WalletBalance:     u.Wallet,
		PurchasedVideoIDs: append([]string(nil), u.Purchases...),
	}
}

// Resolve performs the single unknown→resolved transition. With no
// stored credential, or when the backend rejects it, the session
// resolves anonymous; a rejected credential has already been cleared by
// the gateway's 401 policy by the time Resolve observes the failure.
func (s *Source) Resolve(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUnknown {
		s.mu.Unlock()
		return ErrAlreadyResolved
	}
	s.mu.Unlock()

	ctx, op := logging.StartOp(ctx, "session.resolve")

	var resolved *models.Identity
	if s.creds.Token() != "" {
		var out struct {
			User *userPayload `json:"user"`
		}
		if err := s.gateway.Get(ctx, "/auth/me", &out); err != nil {
			s.logger.Warn("identity verification failed, resolving anonymous",
				slog.String("error", err.Error()))
		} else if out.User != nil {
			id := out.User.identity()
			resolved = &id
		}
	}

	s.finishResolve(resolved)
	op.End(nil)
	return nil
}

// Login exchanges credentials for a bearer token, persists it, and
// installs the returned identity. When the session is still unknown the
// login doubles as its resolve transition; once resolved, the identity
// is replaced without re-firing resolve callbacks.
func (s *Source) Login(ctx context.Context, email, password string) error {
	ctx, op := logging.StartOp(ctx, "session.login")

	var out struct {
		Token string       `json:"token"`
		User  *userPayload `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := s.gateway.Post(ctx, "/auth/login", body, &out); err != nil {
		op.End(err)
		return err
	}
	if out.Token == "" || out.User == nil {
		op.End(ErrLoginFailed)
		return ErrLoginFailed
	}

	if err := s.creds.Save(out.Token); err != nil {
		op.End(err)
		return err
	}

	id := out.User.identity()

	s.mu.Lock()
	wasUnknown := s.state == StateUnknown
	s.identity = &id
	s.state = StateResolved
	s.mu.Unlock()

	if wasUnknown {
		s.fireResolved()
	}
	op.End(nil)
	return nil
}

// Revoke clears the stored credential and identity. The resolve
// transition is not replayed; a revoked source stays revoked.
func (s *Source) Revoke() {
	s.creds.Clear()

	s.mu.Lock()
	s.identity = nil
	s.state = StateRevoked
	s.mu.Unlock()
}

// State returns the current lifecycle state.
func (s *Source) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentIdentity returns a snapshot of the resolved identity, or nil
// while unresolved or anonymous.
func (s *Source) CurrentIdentity() *models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	snapshot := *s.identity
	snapshot.PurchasedVideoIDs = append([]string(nil), s.identity.PurchasedVideoIDs...)
	return &snapshot
}

// OnResolved registers a callback for the resolve transition. Each
// callback fires exactly once: immediately when the source has already
// resolved, otherwise when it does.
func (s *Source) OnResolved(fn func(*models.Identity)) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	if s.state == StateUnknown {
		s.callbacks = append(s.callbacks, fn)
		s.mu.Unlock()
		return
	}
	identity := s.identity
	s.mu.Unlock()

	fn(identity)
}

// ApplyPurchase records a completed purchase on the cached identity via
// an immutable update. The durable purchase set still lives server-side
// and is reconciled on the next identity refresh.
func (s *Source) ApplyPurchase(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return
	}
	updated := s.identity.WithPurchase(videoID)
	s.identity = &updated
}

func (s *Source) finishResolve(identity *models.Identity) {
	s.mu.Lock()
	if s.state != StateUnknown {
		s.mu.Unlock()
		return
	}
	s.identity = identity
	s.state = StateResolved
	s.mu.Unlock()

	s.fireResolved()
}

func (s *Source) fireResolved() {
	s.mu.Lock()
	callbacks := s.callbacks
	s.callbacks = nil
	identity := s.identity
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(identity)
	}
}
