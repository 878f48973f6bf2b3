// Package protocol implements the posthumous-message release state machine:
// account liveness, council consensus, the encrypted message store, claim and
// access-grant rules, and the proof-gated reward escrow.
//
// The package is deliberately pure: every mutating operation is a
// deterministic function of (state, transaction) and validates all
// preconditions before its first mutation, so a returned error implies no
// state change. Persistence, clocks, proof verification and confidential
// value custody live outside, in the server engine and its collaborators.
package protocol

import "time"

// Protocol constants. These are part of the public surface and must not
// change once a journal has been written with them.
const (
	// DefaultCheckInPeriod is used when a registration passes a zero period.
	DefaultCheckInPeriod = 30 * 24 * time.Hour
	// DefaultGracePeriod is used when a registration passes a zero grace.
	DefaultGracePeriod = 7 * 24 * time.Hour
	// MinPeriod bounds both the check-in and the grace period from below.
	MinPeriod = 24 * time.Hour

	// MaxNameLen caps the account display name, in bytes.
	MaxNameLen = 100

	// MaxRecipientIDLen is the maximum byte length of a recipient identifier
	// (an RFC 5321 address fits in 320 bytes).
	MaxRecipientIDLen = 320
	// LimbSize is the plaintext size of one confidential limb.
	LimbSize = 32
	// RecipientIDLimbs is the fixed limb count every message carries,
	// regardless of the true identifier length. Fixed padding keeps the
	// stored shape from leaking the length.
	RecipientIDLimbs = (MaxRecipientIDLen + LimbSize - 1) / LimbSize

	// MaxPayloadSize caps the public ciphertext payload, in bytes.
	MaxPayloadSize = 10 * 1024

	// MaxCouncilSize caps the per-account council roster.
	MaxCouncilSize = 20

	// MaxRecipients caps the per-message recipient commitment list.
	MaxRecipients = 256

	// NotifierWindow is how long after a death declaration only the notifier
	// may claim.
	NotifierWindow = 24 * time.Hour

	// BaseReward and RewardPerKB define the protocol fee floor for a
	// delivery reward: BaseReward plus RewardPerKB per started kilobyte of
	// payload.
	BaseReward  = 1000
	RewardPerKB = 100
)

// MinReward returns the smallest reward that may be escrowed for a message
// with a payload of the given size.
func MinReward(payloadSize int) uint64 {
	kb := (payloadSize + 1023) / 1024
	return uint64(BaseReward + RewardPerKB*kb)
}
