package protocol

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	trustedKey = ComputeCommitment(nil, 1, []byte("attestor"), nil, "")
)

const day = 24 * time.Hour

func newTestState() *State {
	return NewState([]Commitment{trustedKey})
}

func register(t *testing.T, s *State, addr string, checkIn, grace time.Duration, at time.Time) {
	t.Helper()
	_, err := s.register(addr, at, RegisterParams{CheckInPeriod: checkIn, GracePeriod: grace})
	require.NoError(t, err)
}

func fund(t *testing.T, s *State, addr string, amount uint64) {
	t.Helper()
	_, err := s.deposit(addr, t0, DepositParams{Amount: amount})
	require.NoError(t, err)
}

// testContent builds valid message content with a distinguishing seed.
func testContent(seed byte) MessageParams {
	limbs := make([]Handle, RecipientIDLimbs)
	raw := make([][]byte, RecipientIDLimbs)
	for i := range limbs {
		limbs[i] = Handle(fmt.Sprintf("limb-%d-%d", seed, i))
		raw[i] = bytes.Repeat([]byte{seed, byte(i)}, LimbSize/2)
	}
	payload := bytes.Repeat([]byte{seed}, 64)
	keyShare := bytes.Repeat([]byte{seed ^ 0xff}, 16)
	return MessageParams{
		Limbs:          limbs,
		RecipientIDLen: 24,
		KeyShare:       Handle(fmt.Sprintf("keyshare-%d", seed)),
		Payload:        payload,
		Commitment:     ComputeCommitment(raw, 24, keyShare, payload, ""),
	}
}

func recipientCommitments(seed byte, n int) []Commitment {
	out := make([]Commitment, n)
	for i := range out {
		out[i] = ComputeCommitment(nil, i+1, []byte{seed}, nil, "recipient")
	}
	return out
}

func contentHash(seed byte) Commitment {
	return ComputeCommitment(nil, 0, nil, []byte{seed}, "content")
}

// addRewardMessage escrows a reward message at t0 and returns its index.
func addRewardMessage(t *testing.T, s *State, owner string, seed byte, reward uint64, recipients int) int {
	t.Helper()
	res, err := s.addMessageWithReward(owner, t0, AddMessageWithRewardParams{
		MessageParams: testContent(seed),
		Reward:        reward,
		Recipients:    recipientCommitments(seed, recipients),
		ContentHash:   contentHash(seed),
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	return len(s.accounts[owner].Messages) - 1
}

// proveParams builds a matching proof for recipient i of a reward message.
func proveParams(owner string, index int, seed byte, recipient int) ProveDeliveryParams {
	return ProveDeliveryParams{
		Account:             owner,
		Index:               index,
		Recipient:           recipient,
		RecipientCommitment: recipientCommitments(seed, recipient+1)[recipient],
		AuthKeyCommitment:   trustedKey,
		ContentCommitment:   contentHash(seed),
		Verified:            true,
	}
}
