package xrpl

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/ripemd160"
)

// Wallet is a freshly generated ledger account. It does not exist on the
// ledger until funded; on the testnet the faucet (or the first inbound
// payment from a funded account) takes care of that.
type Wallet struct {
	Address string
	Seed    string
}

// Generate creates a new ed25519 keypair locally. No network round trip is
// involved; the seed alone reproduces the account.
func Generate() (*Wallet, error) {
	entropy := make([]byte, 16)
	if _, err := rand.Read(entropy); err != nil {
		return nil, err
	}

	seed := EncodeSeed(entropy)
	address, err := DeriveAddress(seed)
	if err != nil {
		return nil, err
	}
	return &Wallet{Address: address, Seed: seed}, nil
}

// DeriveAddress recomputes the classic address controlled by a seed.
func DeriveAddress(seed string) (string, error) {
	entropy, err := DecodeSeed(seed)
	if err != nil {
		return "", err
	}

	// ed25519 key material is SHA-512Half of the seed entropy.
	digest := sha512.Sum512(entropy)
	priv := ed25519.NewKeyFromSeed(digest[:32])
	pub := priv.Public().(ed25519.PublicKey)

	// Account id is RIPEMD160(SHA256(0xED || pubkey)).
	prefixed := append([]byte{0xED}, pub...)
	sha := sha256.Sum256(prefixed)
	ripe := ripemd160.New()
	ripe.Write(sha[:])

	return EncodeAccountID(ripe.Sum(nil)), nil
}
