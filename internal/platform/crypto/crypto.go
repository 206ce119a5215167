package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Cipher seals salary data and payslip files at rest with AES-256-GCM. A Cipher
// built from an empty key passes data through unchanged.
type Cipher struct {
	aead cipher.AEAD
}

func New(key string) (*Cipher, error) {
	if key == "" {
		return &Cipher{}, nil
	}
	decoded, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be 32 bytes after decoding, got %d", len(decoded))
	}
	block, err := aes.NewCipher(decoded)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Configured() bool {
	return c != nil && c.aead != nil
}

// Encrypt returns nonce || ciphertext.
func (c *Cipher) Encrypt(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, nil
	}
	if !c.Configured() {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *Cipher) Decrypt(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	if !c.Configured() {
		return sealed, nil
	}
	size := c.aead.NonceSize()
	if len(sealed) < size {
		return nil, ErrCiphertextTooShort
	}
	return c.aead.Open(nil, sealed[:size], sealed[size:], nil)
}

// EncryptAmount seals a monetary amount in its canonical two-digit form.
func (c *Cipher) EncryptAmount(amount decimal.Decimal) ([]byte, error) {
	return c.Encrypt([]byte(amount.StringFixed(2)))
}

// DecryptAmount opens an amount sealed by EncryptAmount. Empty input is 0.
func (c *Cipher) DecryptAmount(sealed []byte) (decimal.Decimal, error) {
	plain, err := c.Decrypt(sealed)
	if err != nil {
		return decimal.Zero, err
	}
	if len(plain) == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(plain))
}

func decodeKey(raw string) ([]byte, error) {
	if len(raw) == 64 {
		decoded, err := hex.DecodeString(raw)
		if err == nil {
			return decoded, nil
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawStdEncoding.DecodeString(raw); err == nil {
		return decoded, nil
	}
	return []byte(raw), nil
}
