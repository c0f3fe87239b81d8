package xrpl

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSeedEncodeDecodeRoundTrip(t *testing.T) {
	entropy := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F}

	seed := EncodeSeed(entropy)
	if !strings.HasPrefix(seed, "sEd") {
		t.Fatalf("ed25519 seed should start with sEd, got %q", seed)
	}

	got, err := DecodeSeed(seed)
	if err != nil {
		t.Fatalf("DecodeSeed: %v", err)
	}
	if !bytes.Equal(got, entropy) {
		t.Fatalf("roundtrip mismatch: got %x want %x", got, entropy)
	}
}

func TestDecodeSeedRejectsTamperedChecksum(t *testing.T) {
	seed := EncodeSeed(bytes.Repeat([]byte{0x42}, 16))

	// Flip the last character to another alphabet member.
	last := seed[len(seed)-1]
	replacement := byte(alphabet[0])
	if last == replacement {
		replacement = alphabet[1]
	}
	tampered := seed[:len(seed)-1] + string(replacement)

	if _, err := DecodeSeed(tampered); !errors.Is(err, ErrBadChecksum) {
		t.Fatalf("got %v, want ErrBadChecksum", err)
	}
}

func TestDecodeSeedRejectsSecp256k1Seeds(t *testing.T) {
	// A classic secp256k1 family seed starts with "s" but not "sEd".
	if _, err := DecodeSeed("snoPBrXtMeMyMHUVTgbuqAfg1SUTb"); !errors.Is(err, ErrUnsupportedSeed) {
		t.Fatalf("got %v, want ErrUnsupportedSeed", err)
	}
}

func TestDecodeSeedRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not-base58-0OIl", "r9cZA1mLK5R5Am25ArfXFmqgNwjZgnfk59"} {
		if _, err := DecodeSeed(s); err == nil {
			t.Errorf("DecodeSeed(%q): expected error", s)
		}
	}
}

func TestEncodeAccountIDPrefix(t *testing.T) {
	addr := EncodeAccountID(bytes.Repeat([]byte{0x00}, 20))
	if !strings.HasPrefix(addr, "r") {
		t.Fatalf("classic address should start with r, got %q", addr)
	}
}

func TestAccountIDRoundTripPreservesLeadingZeros(t *testing.T) {
	// The version byte is 0x00, so every address encodes at least one
	// leading 'r'; extra zero bytes in the account id must survive the
	// decode or the checksum shifts and verification fails.
	id := append([]byte{0x00, 0x00, 0x00}, bytes.Repeat([]byte{0x5A}, 17)...)

	addr := EncodeAccountID(id)
	got, err := decodeChecked(addr, accountPrefix)
	if err != nil {
		t.Fatalf("decodeChecked(%q): %v", addr, err)
	}
	if !bytes.Equal(got, id) {
		t.Fatalf("roundtrip mismatch: got %x want %x", got, id)
	}
}

func TestCurrencyCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VPC", "VPC"},
		{"vpc", "VPC"},
		{" usd ", "USD"},
		{"ZINE", "5A494E4500000000000000000000000000000000"},
	}
	for _, tt := range tests {
		got, err := CurrencyCode(tt.in)
		if err != nil {
			t.Errorf("CurrencyCode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CurrencyCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCurrencyCodeLongFormShape(t *testing.T) {
	got, err := CurrencyCode("ZINETOKEN")
	if err != nil {
		t.Fatalf("CurrencyCode: %v", err)
	}
	if len(got) != 40 {
		t.Fatalf("hex currency must be 40 chars, got %d (%q)", len(got), got)
	}
	if !strings.HasSuffix(got, "0") {
		t.Fatalf("hex currency should be right-padded with zeros: %q", got)
	}
}

func TestCurrencyCodeRejects(t *testing.T) {
	if _, err := CurrencyCode(""); err == nil {
		t.Error("empty code should be rejected")
	}
	if _, err := CurrencyCode(strings.Repeat("A", 21)); err == nil {
		t.Error("over-long code should be rejected")
	}
}
