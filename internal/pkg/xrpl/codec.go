package xrpl

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// XRPL's base58 dictionary. Not the bitcoin one: the account version byte
// (0x00) maps to 'r', which is why classic addresses start with r.
const alphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// Version prefixes per the XRPL address codec.
var (
	accountPrefix     = []byte{0x00}
	ed25519SeedPrefix = []byte{0x01, 0xE1, 0x4B} // renders as "sEd"
)

var (
	ErrBadChecksum     = errors.New("xrpl: bad base58 checksum")
	ErrBadEncoding     = errors.New("xrpl: invalid base58 input")
	ErrUnsupportedSeed = errors.New("xrpl: unsupported seed type, only ed25519 (sEd...) seeds are handled")
)

func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:4]
}

func encodeBase58(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	n := new(big.Int).SetBytes(data)
	radix := big.NewInt(58)
	mod := new(big.Int)

	var out []byte
	for n.Sign() > 0 {
		n.DivMod(n, radix, mod)
		out = append(out, alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		out = append(out, alphabet[0])
	}

	// digits were produced least-significant first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}

func decodeBase58(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrBadEncoding
	}

	n := new(big.Int)
	radix := big.NewInt(58)
	for _, c := range s {
		idx := strings.IndexRune(alphabet, c)
		if idx < 0 {
			return nil, ErrBadEncoding
		}
		n.Mul(n, radix)
		n.Add(n, big.NewInt(int64(idx)))
	}

	zeros := 0
	for zeros < len(s) && s[zeros] == alphabet[0] {
		zeros++
	}

	return append(make([]byte, zeros), n.Bytes()...), nil
}

func encodeChecked(prefix, payload []byte) string {
	data := append(append([]byte{}, prefix...), payload...)
	return encodeBase58(append(data, checksum(data)...))
}

func decodeChecked(s string, prefix []byte) ([]byte, error) {
	raw, err := decodeBase58(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < len(prefix)+5 {
		return nil, ErrBadEncoding
	}
	body, sum := raw[:len(raw)-4], raw[len(raw)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, ErrBadChecksum
	}
	if !bytes.HasPrefix(body, prefix) {
		return nil, ErrBadEncoding
	}
	return body[len(prefix):], nil
}

// EncodeAccountID renders a 20-byte account id as a classic address.
func EncodeAccountID(accountID []byte) string {
	return encodeChecked(accountPrefix, accountID)
}

// EncodeSeed renders 16 bytes of entropy as an ed25519 family seed (sEd...).
func EncodeSeed(entropy []byte) string {
	return encodeChecked(ed25519SeedPrefix, entropy)
}

// DecodeSeed parses an ed25519 family seed back into its 16-byte entropy.
func DecodeSeed(seed string) ([]byte, error) {
	entropy, err := decodeChecked(seed, ed25519SeedPrefix)
	if err != nil {
		if errors.Is(err, ErrBadEncoding) && strings.HasPrefix(seed, "s") && !strings.HasPrefix(seed, "sEd") {
			return nil, ErrUnsupportedSeed
		}
		return nil, err
	}
	if len(entropy) != 16 {
		return nil, ErrBadEncoding
	}
	return entropy, nil
}

// CurrencyCode derives the on-ledger currency field from a token code.
// Three-character codes are used as-is (standard currency format); anything
// longer becomes the 160-bit hex form, zero-padded on the right.
func CurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", errors.New("xrpl: empty currency code")
	}
	if len(code) == 3 {
		return code, nil
	}
	if len(code) > 20 {
		return "", fmt.Errorf("xrpl: currency code %q exceeds 20 bytes", code)
	}
	h := strings.ToUpper(hex.EncodeToString([]byte(code)))
	return h + strings.Repeat("0", 40-len(h)), nil
}
