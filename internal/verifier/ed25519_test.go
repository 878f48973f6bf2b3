package verifier

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEd25519Attestor_AcceptsValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signals := []byte("recipient|authkey|content")
	sig := ed25519.Sign(priv, signals)

	v := NewEd25519Attestor(pub)
	ok, err := v.Verify(context.Background(), sig, signals)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEd25519Attestor_RejectsWrongSigner(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signals := []byte("recipient|authkey|content")
	sig := ed25519.Sign(otherPriv, signals)

	v := NewEd25519Attestor(pub)
	ok, err := v.Verify(context.Background(), sig, signals)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEd25519Attestor_RejectsTamperedSignals(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, []byte("original"))

	v := NewEd25519Attestor(pub)
	ok, err := v.Verify(context.Background(), sig, []byte("tampered"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEd25519Attestor_MalformedProof(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	v := NewEd25519Attestor(pub)
	_, err = v.Verify(context.Background(), []byte("too short"), []byte("signals"))
	require.ErrorIs(t, err, ErrMalformedProof)
}

func TestEd25519Attestor_FailsClosedWithoutKey(t *testing.T) {
	v := NewEd25519Attestor(nil)
	sig := make([]byte, ed25519.SignatureSize)
	ok, err := v.Verify(context.Background(), sig, []byte("signals"))
	require.NoError(t, err)
	require.False(t, ok)
}
