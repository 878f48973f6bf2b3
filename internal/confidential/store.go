// Package confidential is the confidential-value collaborator: it custodies
// opaque ciphertext blobs behind handles and evaluates decryption grants.
// The protocol engine only ever moves handles around; plaintext never crosses
// this boundary in either direction (the stored blobs are already encrypted
// by the submitting client).
package confidential

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/heirloom/internal/protocol"
)

var (
	// ErrUnknownHandle means the handle references no stored value.
	ErrUnknownHandle = errors.New("unknown confidential handle")
	// ErrNoGrant means the caller holds no decryption capability.
	ErrNoGrant = errors.New("no grant for caller")
)

// Store custodies confidential values. Grants are append-only: once issued a
// capability is never revoked.
type Store interface {
	// Ingest stores an externally-encrypted value for owner and returns its
	// handle. The store never inspects the plaintext.
	Ingest(ctx context.Context, owner string, ciphertext []byte) (protocol.Handle, error)

	// Grant issues an irrevocable decryption capability to grantee.
	// Granting twice is a no-op, not an error.
	Grant(ctx context.Context, handle protocol.Handle, grantee string) error

	// Open returns the stored ciphertext to the owner or a grantee; any
	// other caller gets ErrNoGrant.
	Open(ctx context.Context, handle protocol.Handle, caller string) ([]byte, error)
}
