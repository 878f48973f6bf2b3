// Package verifier checks delivery proofs before they enter the journal.
// The engine resolves a proof to a boolean verdict exactly once, at submit
// time, so replay never re-verifies anything.
package verifier

import (
	"context"
	"errors"
)

var (
	// ErrMalformedProof means the proof bytes could not be parsed at all.
	ErrMalformedProof = errors.New("malformed delivery proof")
)

// Verifier validates a delivery proof against its public signals. The public
// signals are the canonical encoding of the three commitments a prover binds
// to: recipient, authenticity key and content. Implementations must fail
// closed: any doubt is a false verdict or an error, never a true one.
type Verifier interface {
	Verify(ctx context.Context, proof, publicSignals []byte) (bool, error)
}
