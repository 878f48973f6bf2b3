package cryptox

import (
	"testing"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/stretchr/testify/require"
)

func TestSealUnseal_RoundTrip(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	plaintext := []byte("limb ciphertext as submitted by the client")

	sealed, nonce, err := Seal(plaintext, key)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, sealed)

	back, err := Unseal(sealed, nonce, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, back)
}

func TestUnseal_RejectsTampering(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	sealed, nonce, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	sealed[0] ^= 0xff
	_, err = Unseal(sealed, nonce, key)
	require.Error(t, err)
}

func TestUnseal_RejectsWrongKey(t *testing.T) {
	key := common.GenerateRandByteArray(32)
	sealed, nonce, err := Seal([]byte("payload"), key)
	require.NoError(t, err)

	other := common.GenerateRandByteArray(32)
	_, err = Unseal(sealed, nonce, other)
	require.Error(t, err)
}

func TestSeal_BadKeyLength(t *testing.T) {
	_, _, err := Seal([]byte("x"), []byte("short"))
	require.Error(t, err)
}

func TestHashPassword_DeterministicPerSalt(t *testing.T) {
	salt := common.GenerateRandByteArray(16)
	a := HashPassword([]byte("correct horse"), salt)
	b := HashPassword([]byte("correct horse"), salt)
	require.Equal(t, a, b)
	require.Len(t, a, 32)

	c := HashPassword([]byte("correct horse"), common.GenerateRandByteArray(16))
	require.NotEqual(t, a, c)
}
