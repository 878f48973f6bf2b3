package verifier

import (
	"context"
	"crypto/ed25519"
)

// Ed25519Attestor accepts proofs that are Ed25519 signatures over the public
// signals, issued by a trusted attestation service. This is the deployment
// model where recipients prove possession of the authenticity key to an
// off-protocol attestor, which then signs the commitment tuple.
type Ed25519Attestor struct {
	pub ed25519.PublicKey
}

func NewEd25519Attestor(pub ed25519.PublicKey) *Ed25519Attestor {
	return &Ed25519Attestor{pub: pub}
}

func (a *Ed25519Attestor) Verify(_ context.Context, proof, publicSignals []byte) (bool, error) {
	if len(proof) != ed25519.SignatureSize {
		return false, ErrMalformedProof
	}
	if len(a.pub) != ed25519.PublicKeySize {
		return false, nil
	}
	return ed25519.Verify(a.pub, publicSignals, proof), nil
}
