package models

import "time"

// Message is a locally cached copy of a released message retrieved from the
// server. Payload and KeyShare are stored as the server returned them; the
// commitment is kept so the user can re-verify the content later.
type Message struct {
	Owner       string
	Idx         int
	Annotation  string
	Payload     []byte
	KeyShare    []byte
	Commitment  string
	RetrievedAt time.Time
}
