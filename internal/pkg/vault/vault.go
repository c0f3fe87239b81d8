package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Vault encrypts secret material (ledger account seeds) before it is
// persisted. AES-256-CBC with a fresh random IV per call; the stored form
// is "iv_hex:cipher_hex".
type Vault struct {
	key []byte
}

const defaultDevKey = "zinefold-dev-wallet-key-not-for-production"

var (
	ErrKeyRequired  = errors.New("wallet encryption key is required in production")
	ErrMalformed    = errors.New("malformed ciphertext")
	ErrDecryptAgain = errors.New("decryption failed")
)

// New builds a Vault from the configured key string. The key is normalized
// to 32 bytes via SHA-256 so operators may supply a passphrase of any
// length. An empty key is tolerated only outside production.
func New(key string, production bool) (*Vault, error) {
	if key == "" {
		if production {
			return nil, ErrKeyRequired
		}
		log.Warn().Msg("WALLET_ENCRYPTION_KEY not set, using development default")
		key = defaultDevKey
	}
	sum := sha256.Sum256([]byte(key))
	return &Vault{key: sum[:]}, nil
}

// Encrypt returns "iv_hex:cipher_hex" for the given plaintext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Input without a ':' separator is returned
// unchanged: rows written before encryption was introduced hold raw seeds,
// and callers must still be able to read them. Callers must not treat this
// passthrough as a security boundary.
func (v *Vault) Decrypt(stored string) (string, error) {
	if !strings.Contains(stored, ":") {
		return stored, nil
	}

	parts := strings.SplitN(stored, ":", 2)
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformed
	}
	data, err := hex.DecodeString(parts[1])
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", ErrMalformed
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", err
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptAgain, err)
	}
	return string(unpadded), nil
}

// EncryptOrPlaintext encrypts, and on failure stores the plaintext rather
// than losing the secret. The failure is logged at error level so the
// availability-over-confidentiality tradeoff is visible in operations.
func (v *Vault) EncryptOrPlaintext(plaintext string) string {
	out, err := v.Encrypt(plaintext)
	if err != nil {
		log.Error().Err(err).Msg("SECRET ENCRYPTION FAILED, persisting plaintext seed")
		return plaintext
	}
	return out
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-pad], nil
}
