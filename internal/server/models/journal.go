package models

import "time"

// JournalRecord is one persisted protocol transaction. Body is the canonical
// JSON encoding of the transaction; Seq is assigned by the engine and is
// strictly increasing with no gaps.
type JournalRecord struct {
	Seq       uint64
	Body      []byte
	CreatedAt time.Time
}
