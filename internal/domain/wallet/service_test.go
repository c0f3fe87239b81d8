package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/zinefold/zinefold-api/internal/pkg/vault"
	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

type fakeWalletStore struct {
	byUser  map[uuid.UUID]*Wallet
	created int
	winner  *Wallet // pre-inserted row that wins the race
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{byUser: make(map[uuid.UUID]*Wallet)}
}

func (f *fakeWalletStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	return f.byUser[userID], nil
}

func (f *fakeWalletStore) Create(ctx context.Context, w *Wallet) (bool, error) {
	if f.winner != nil {
		f.byUser[w.UserID] = f.winner
		return false, nil
	}
	f.created++
	f.byUser[w.UserID] = w
	return true, nil
}

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	v, err := vault.New("test-key", false)
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	return v
}

func fixedKeygen(address, seed string) Keygen {
	return func() (*xrpl.Wallet, error) {
		return &xrpl.Wallet{Address: address, Seed: seed}, nil
	}
}

func TestProvisionEncryptsSeedBeforePersisting(t *testing.T) {
	store := newFakeWalletStore()
	svc := NewService(store, testVault(t), "zinefold.app").
		WithKeygen(fixedKeygen("rTestAddress123", "sEdSecretSeedValue"))
	userID := uuid.New()

	w, err := svc.Provision(context.Background(), userID)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if w.LedgerAddress != "rTestAddress123" {
		t.Errorf("address = %q", w.LedgerAddress)
	}
	stored := store.byUser[userID].EncryptedSecret
	if strings.Contains(stored, "sEdSecretSeedValue") {
		t.Fatal("raw seed was persisted")
	}
	if !strings.Contains(stored, ":") {
		t.Fatalf("stored secret is not in encrypted form: %q", stored)
	}
	if w.PayIDString() != userID.String()+"$zinefold.app" {
		t.Errorf("payid = %q", w.PayIDString())
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	store := newFakeWalletStore()
	svc := NewService(store, testVault(t), "").
		WithKeygen(fixedKeygen("rTestAddress123", "sEdSecretSeedValue"))
	userID := uuid.New()

	first, err := svc.Provision(context.Background(), userID)
	if err != nil {
		t.Fatalf("first Provision: %v", err)
	}
	second, err := svc.Provision(context.Background(), userID)
	if err != nil {
		t.Fatalf("second Provision: %v", err)
	}

	if store.created != 1 {
		t.Fatalf("created %d wallets, want 1", store.created)
	}
	if first.LedgerAddress != second.LedgerAddress {
		t.Fatal("second provision returned a different wallet")
	}
}

func TestProvisionLostRaceAdoptsWinner(t *testing.T) {
	store := newFakeWalletStore()
	userID := uuid.New()
	store.winner = &Wallet{ID: uuid.New(), UserID: userID, LedgerAddress: "rWinnerAddress"}

	svc := NewService(store, testVault(t), "").
		WithKeygen(fixedKeygen("rLoserAddress", "sEdLoserSeed"))

	w, err := svc.Provision(context.Background(), userID)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if w.LedgerAddress != "rWinnerAddress" {
		t.Fatalf("adopted %q, want the winner's wallet", w.LedgerAddress)
	}
}

func TestGetNoWallet(t *testing.T) {
	svc := NewService(newFakeWalletStore(), testVault(t), "")

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNoWallet) {
		t.Fatalf("got %v, want ErrNoWallet", err)
	}
}

func TestSigningSeedRoundTrip(t *testing.T) {
	store := newFakeWalletStore()
	svc := NewService(store, testVault(t), "").
		WithKeygen(fixedKeygen("rTestAddress123", "sEdSecretSeedValue"))
	userID := uuid.New()

	if _, err := svc.Provision(context.Background(), userID); err != nil {
		t.Fatalf("Provision: %v", err)
	}

	seed, err := svc.SigningSeed(context.Background(), userID)
	if err != nil {
		t.Fatalf("SigningSeed: %v", err)
	}
	if seed != "sEdSecretSeedValue" {
		t.Fatalf("seed = %q", seed)
	}
}
