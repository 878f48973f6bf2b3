package protocol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/sha3"
)

// Handle references an opaque confidential value held by the confidential
// store. The protocol never sees the plaintext behind a handle.
type Handle string

// Commitment is a SHA3-256 digest. It marshals to/from lowercase hex in JSON
// so journal entries and API payloads stay readable.
type Commitment [32]byte

func (c Commitment) String() string { return hex.EncodeToString(c[:]) }

func (c Commitment) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Commitment) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCommitment(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCommitment decodes a 64-character hex string into a Commitment.
func ParseCommitment(s string) (Commitment, error) {
	var c Commitment
	raw, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("invalid commitment: %w", err)
	}
	if len(raw) != len(c) {
		return c, fmt.Errorf("invalid commitment length %d", len(raw))
	}
	copy(c[:], raw)
	return c, nil
}

// ComputeCommitment derives the content-integrity commitment over every
// input of a message: the encrypted limbs in order, the true identifier
// length, the encrypted key share, the payload and the annotation. Field
// lengths are folded in so adjacent fields cannot be shifted into each other.
func ComputeCommitment(limbs [][]byte, trueLen int, keyShare, payload []byte, annotation string) Commitment {
	h := sha3.New256()
	var scratch [8]byte
	writeChunk := func(b []byte) {
		putUint64(scratch[:], uint64(len(b)))
		h.Write(scratch[:])
		h.Write(b)
	}
	putUint64(scratch[:], uint64(len(limbs)))
	h.Write(scratch[:])
	for _, limb := range limbs {
		writeChunk(limb)
	}
	putUint64(scratch[:], uint64(trueLen))
	h.Write(scratch[:])
	writeChunk(keyShare)
	writeChunk(payload)
	writeChunk([]byte(annotation))
	var c Commitment
	h.Sum(c[:0])
	return c
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
}

// CouncilMember is one entry on an account's trusted-voter roster.
type CouncilMember struct {
	Address  string    `json:"address"`
	JoinedAt time.Time `json:"joined_at"`
}

// GraceVote tracks one voting epoch for an account. It is reset whenever the
// account returns to Alive.
type GraceVote struct {
	Epoch         uint64
	Ballots       map[string]bool // member address -> voted alive
	Alive         int
	Dead          int
	Decided       bool
	DecisionAlive bool
}

func newGraceVote(epoch uint64) GraceVote {
	return GraceVote{Epoch: epoch, Ballots: make(map[string]bool)}
}

// Account is the per-identity protocol record. Accounts are never deleted.
type Account struct {
	Address       string
	Name          string
	CheckInPeriod time.Duration
	GracePeriod   time.Duration
	LastCheckIn   time.Time
	RegisteredOn  time.Time
	Deceased      bool
	FinalAlive    bool
	Notifier      string
	NotifiedAt    time.Time
	LockedRewards uint64
	Council       []*CouncilMember
	Vote          GraceVote
	Messages      []*Message
}

// Message is one encrypted message at a fixed index within its account.
// Messages are never removed; revocation is a terminal flag.
type Message struct {
	Index          int
	Limbs          []Handle // always exactly RecipientIDLimbs entries
	RecipientIDLen int
	KeyShare       Handle
	Payload        []byte
	Annotation     string
	Commitment     Commitment // content-integrity commitment, dedup key
	Claimed        bool
	ClaimedBy      string
	Revoked        bool
	Reward         uint64
	Recipients     []Commitment // per-recipient identity commitments
	ContentHash    Commitment   // proof-matching commitment
	Proven         *big.Int     // bitmap of proven recipients
}

// provenFull reports whether every recipient bit is set.
func (m *Message) provenFull() bool {
	if len(m.Recipients) == 0 {
		return false
	}
	full := new(big.Int).Lsh(big.NewInt(1), uint(len(m.Recipients)))
	full.Sub(full, big.NewInt(1))
	return m.Proven != nil && m.Proven.Cmp(full) == 0
}
