package xrpl

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.HasPrefix(w.Address, "r") {
		t.Errorf("address should start with r, got %q", w.Address)
	}
	if len(w.Address) < 25 || len(w.Address) > 35 {
		t.Errorf("unexpected address length: %q", w.Address)
	}
	if !strings.HasPrefix(w.Seed, "sEd") {
		t.Errorf("seed should start with sEd, got %q", w.Seed)
	}
}

func TestDeriveAddressIsDeterministic(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := 0; i < 3; i++ {
		addr, err := DeriveAddress(w.Seed)
		if err != nil {
			t.Fatalf("DeriveAddress: %v", err)
		}
		if addr != w.Address {
			t.Fatalf("derived %q, generated %q", addr, w.Address)
		}
	}
}

func TestGenerateProducesDistinctAccounts(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a.Address == b.Address || a.Seed == b.Seed {
		t.Fatal("two generated wallets collided")
	}
}

func TestDeriveAddressRejectsBadSeed(t *testing.T) {
	if _, err := DeriveAddress("not a seed"); err == nil {
		t.Fatal("expected error for invalid seed")
	}
}
