// Package models holds the persistence-layer row types shared by the
// repositories and services.
package models

import "time"

// Identity is an API credential bound to a protocol account address.
// The verifier is an argon2id digest of the password under Salt.
type Identity struct {
	ID        string
	Address   string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
