package crypto

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestRoundTrip(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)
	require.True(t, c.Configured())

	sealed, err := c.Encrypt([]byte("payslip"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("payslip"), sealed)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "payslip", string(plain))
}

func TestAmountRoundTrip(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)

	sealed, err := c.EncryptAmount(decimal.RequireFromString("1200000"))
	require.NoError(t, err)

	amount, err := c.DecryptAmount(sealed)
	require.NoError(t, err)
	assert.Equal(t, "1200000.00", amount.StringFixed(2))
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.False(t, c.Configured())

	sealed, err := c.EncryptAmount(decimal.RequireFromString("600000.5"))
	require.NoError(t, err)
	assert.Equal(t, "600000.50", string(sealed))

	amount, err := c.DecryptAmount([]byte("600000.50"))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("600000.50")))
}

func TestRejectsShortKey(t *testing.T) {
	_, err := New("short")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "32 bytes"))
}

func TestTamperedCiphertext(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)

	sealed, err := c.Encrypt([]byte("salary"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xff

	_, err = c.Decrypt(sealed)
	assert.Error(t, err)

	_, err = c.Decrypt([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestDecryptEmptyAmount(t *testing.T) {
	c, err := New(testKey)
	require.NoError(t, err)
	amount, err := c.DecryptAmount(nil)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}
