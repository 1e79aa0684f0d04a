package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/clipmarket/client/internal/api"
)

// scriptedGateway replays canned replies and records every call.
type scriptedGateway struct {
	replies []any
	errs    []error
	calls   []string
}

func (g *scriptedGateway) next(path string, out any) error {
	g.calls = append(g.calls, path)
	idx := len(g.calls) - 1

	if idx < len(g.errs) && g.errs[idx] != nil {
		return g.errs[idx]
	}
	if idx < len(g.replies) && out != nil {
		payload, err := json.Marshal(g.replies[idx])
		if err != nil {
			return err
		}
		return json.Unmarshal(payload, out)
	}
	return nil
}

func (g *scriptedGateway) Get(_ context.Context, path string, out any) error {
	return g.next(path, out)
}

func (g *scriptedGateway) Post(_ context.Context, path string, _, out any) error {
	return g.next(path, out)
}

func TestPurchaseReplacesBalanceWithServerValue(t *testing.T) {
	// The server's replies deliberately disagree with local arithmetic
	// so a balance -= price bug cannot pass.
	gw := &scriptedGateway{replies: []any{
		map[string]int{"newBalance": 37},
		map[string]int{"newBalance": 12},
	}}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(100); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ledger.Purchase(context.Background(), "v1")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got != 37 || ledger.Balance() != 37 {
		t.Fatalf("expected server balance 37 got %d (cached %d)", got, ledger.Balance())
	}

	if _, err := ledger.Purchase(context.Background(), "v2"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if ledger.Balance() != 12 {
		t.Fatalf("expected server balance 12 got %d", ledger.Balance())
	}
}

func TestPurchaseFailureLeavesBalanceUntouched(t *testing.T) {
	gw := &scriptedGateway{errs: []error{
		&api.Error{Status: 400, Message: "Insufficient balance"},
	}}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(50); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := ledger.Purchase(context.Background(), "v1")
	var rejection *RejectionError
	if !errors.As(err, &rejection) {
		t.Fatalf("expected RejectionError got %v", err)
	}
	if rejection.Reason != "Insufficient balance" {
		t.Fatalf("expected verbatim server message got %q", rejection.Reason)
	}
	if ledger.Balance() != 50 {
		t.Fatalf("balance changed on failure: %d", ledger.Balance())
	}
}

func TestSendGiftFastFailsWithoutNetworkCall(t *testing.T) {
	gw := &scriptedGateway{}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(30); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := ledger.SendGift(context.Background(), "c1", "v1", 31)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway called %d times for a local fast-fail", len(gw.calls))
	}
	if ledger.Balance() != 30 {
		t.Fatalf("balance changed: %d", ledger.Balance())
	}
}

func TestSendGiftRejectsNonPositiveAmounts(t *testing.T) {
	gw := &scriptedGateway{}
	ledger := NewLedger(gw, nil)

	for _, amount := range []int{0, -5} {
		if _, err := ledger.SendGift(context.Background(), "c1", "v1", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount got %v", amount, err)
		}
	}
	if len(gw.calls) != 0 {
		t.Fatalf("gateway called for invalid amounts")
	}
}

func TestSendGiftReplacesBalance(t *testing.T) {
	gw := &scriptedGateway{replies: []any{map[string]int{"newBalance": 4}}}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(10); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ledger.SendGift(context.Background(), "c1", "v1", 6)
	if err != nil {
		t.Fatalf("gift: %v", err)
	}
	if got != 4 || ledger.Balance() != 4 {
		t.Fatalf("expected balance 4 got %d (cached %d)", got, ledger.Balance())
	}
	if len(gw.calls) != 1 || gw.calls[0] != "/gifts/send" {
		t.Fatalf("unexpected calls: %v", gw.calls)
	}
}

func TestRefreshReplacesBalance(t *testing.T) {
	gw := &scriptedGateway{replies: []any{map[string]int{"balance": 77}}}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(5); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ledger.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got != 77 || ledger.Balance() != 77 {
		t.Fatalf("expected 77 got %d (cached %d)", got, ledger.Balance())
	}
}

func TestSeedGuards(t *testing.T) {
	ledger := NewLedger(&scriptedGateway{}, nil)

	if err := ledger.Seed(-1); !errors.Is(err, ErrNegativeBalance) {
		t.Fatalf("expected ErrNegativeBalance got %v", err)
	}
	if err := ledger.Seed(10); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ledger.Seed(20); !errors.Is(err, ErrAlreadySeeded) {
		t.Fatalf("expected ErrAlreadySeeded got %v", err)
	}
	if ledger.Balance() != 10 {
		t.Fatalf("second seed changed balance: %d", ledger.Balance())
	}
}

// The client never self-authorizes: a purchase with stale local
// entitlement still reaches the server, whose rejection is final.
func TestPurchaseSequenceWithStaleEntitlement(t *testing.T) {
	gw := &scriptedGateway{
		replies: []any{map[string]int{"newBalance": 50}, nil},
		errs:    []error{nil, &api.Error{Status: 400, Message: "Insufficient balance"}},
	}
	ledger := NewLedger(gw, nil)
	if err := ledger.Seed(100); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := ledger.Purchase(context.Background(), "v1"); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if ledger.Balance() != 50 {
		t.Fatalf("expected 50 got %d", ledger.Balance())
	}

	_, err := ledger.Purchase(context.Background(), "v2")
	var rejection *RejectionError
	if !errors.As(err, &rejection) || rejection.Reason != "Insufficient balance" {
		t.Fatalf("expected server rejection got %v", err)
	}
	if len(gw.calls) != 2 {
		t.Fatalf("second purchase must still call the server, calls: %v", gw.calls)
	}
	if ledger.Balance() != 50 {
		t.Fatalf("failed purchase moved balance to %d", ledger.Balance())
	}
}
