package stubapi

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := mintToken("secret", "u1", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	userID, err := verifyToken("secret", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1 got %q", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := mintToken("secret", "u1", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := verifyToken("other", token); err == nil {
		t.Fatal("expected verification failure")
	}
}

func TestTokenExpiry(t *testing.T) {
	token, err := mintToken("secret", "u1", -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := verifyToken("secret", token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestStorePurchaseGuards(t *testing.T) {
	store := DefaultFixtures()

	if _, err := store.purchase("u-alice", "v1"); err != errFreeVideo {
		t.Fatalf("expected free video guard got %v", err)
	}
	if _, err := store.purchase("u-alice", "missing"); err != errVideoNotFound {
		t.Fatalf("expected video not found got %v", err)
	}
	if _, err := store.purchase("missing", "v3"); err != errUserNotFound {
		t.Fatalf("expected user not found got %v", err)
	}
}
