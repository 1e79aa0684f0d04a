// Package wallet holds the client-side view of the user's balance and
// executes paid actions. The balance here is a cache of server truth:
// it is only ever replaced wholesale with a value the server asserted,
// never adjusted by local arithmetic. A purchase that the server did
// not confirm leaves the cache exactly as it was.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clipmarket/client/internal/api"
	"github.com/clipmarket/client/internal/logging"
)

var (
	// ErrInsufficientFunds is the local fast-fail for gifts that exceed
	// the cached balance. It is a UI courtesy only; the server performs
	// its own authoritative check on every paid action.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	// ErrInvalidAmount rejects gift amounts that are not positive.
	ErrInvalidAmount = errors.New("wallet: gift amount must be positive")
	// ErrAlreadySeeded indicates Seed was called more than once.
	ErrAlreadySeeded = errors.New("wallet: balance already seeded")
	// ErrNegativeBalance rejects seeding with a negative value.
	ErrNegativeBalance = errors.New("wallet: balance must not be negative")
)

// RejectionError carries the server's refusal of a paid action, with
// the message passed through verbatim for display.
type RejectionError struct {
	Reason string
	err    error
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("wallet: rejected: %s", e.Reason)
}

func (e *RejectionError) Unwrap() error { return e.err }

// Gateway is the slice of the API client the ledger needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Ledger owns the wallet balance for the lifetime of a session.
type Ledger struct {
	gateway Gateway
	logger  *slog.Logger

	mu      sync.Mutex
	seeded  bool
	balance int
}

// NewLedger constructs an unseeded ledger.
func NewLedger(gateway Gateway, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{gateway: gateway, logger: logger}
}

// Seed installs the initial balance from the resolved identity. It must
// be called at most once per session.
func (l *Ledger) Seed(balance int) error {
	if balance < 0 {
		return ErrNegativeBalance
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seeded {
		return ErrAlreadySeeded
	}
	l.seeded = true
	l.balance = balance
	return nil
}

// Balance returns the cached balance. Before seeding it reads zero.
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

type balanceReply struct {
	NewBalance int `json:"newBalance"`
}

// Purchase sends a purchase intent carrying only the video id; pricing
// and authorization are entirely server-side. On success the returned
// newBalance replaces the cache and is also returned to the caller, who
// is responsible for recording the entitlement on the identity. On
// failure the cache is untouched and the server's reason is surfaced as
// a RejectionError.
//
// The ledger does not deduplicate concurrent calls; callers must
// disable the initiating control while a purchase is in flight.
func (l *Ledger) Purchase(ctx context.Context, videoID string) (int, error) {
	ctx, op := logging.StartOp(ctx, "wallet.purchase")

	var reply balanceReply
	body := map[string]string{"videoId": videoID}
	if err := l.gateway.Post(ctx, "/videos/purchase", body, &reply); err != nil {
		op.End(err)
		return 0, &RejectionError{Reason: api.ServerMessage(err, "Purchase failed"), err: err}
	}

	l.replace(reply.NewBalance)
	op.End(nil)
	return reply.NewBalance, nil
}

// SendGift transfers amount to the creator of the given video. Amounts
// that are not positive, or exceed the cached balance, fail locally
// without any network call; otherwise the same replace-on-success
// discipline as Purchase applies.
func (l *Ledger) SendGift(ctx context.Context, creatorID, videoID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if amount > l.Balance() {
		return 0, ErrInsufficientFunds
	}

	ctx, op := logging.StartOp(ctx, "wallet.gift")

	var reply balanceReply
	body := map[string]any{"creatorId": creatorID, "videoId": videoID, "amount": amount}
	if err := l.gateway.Post(ctx, "/gifts/send", body, &reply); err != nil {
		op.End(err)
		return 0, &RejectionError{Reason: api.ServerMessage(err, "Gift failed"), err: err}
	}

	l.replace(reply.NewBalance)
	op.End(nil)
	return reply.NewBalance, nil
}

// Refresh re-fetches the authoritative balance. It exists for
// out-of-band reconciliation only; action responses already carry their
// own newBalance and must not be overridden by a racing refresh, so
// callers invoke this between actions, not after them.
func (l *Ledger) Refresh(ctx context.Context) (int, error) {
	ctx, op := logging.StartOp(ctx, "wallet.refresh")

	var reply struct {
		Balance int `json:"balance"`
	}
	if err := l.gateway.Get(ctx, "/videos/balance", &reply); err != nil {
		op.End(err)
		return 0, err
	}

	l.replace(reply.Balance)
	op.End(nil)
	return reply.Balance, nil
}

func (l *Ledger) replace(balance int) {
	l.mu.Lock()
	l.balance = balance
	l.mu.Unlock()
}
