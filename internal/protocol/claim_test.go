package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// deceasedAccount registers alice with two messages, advances past grace and
// has "notifier" declare the death at the returned instant.
func deceasedAccount(t *testing.T, s *State) time.Time {
	t.Helper()
	register(t, s, "alice", day, day, t0)
	_, err := s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: testContent(1)})
	require.NoError(t, err)
	_, err = s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: testContent(2)})
	require.NoError(t, err)

	declaredAt := t0.Add(2*day + time.Second)
	_, err = s.markDeceased("notifier", declaredAt, MarkDeceasedParams{Account: "alice"})
	require.NoError(t, err)
	return declaredAt
}

func TestClaim_RequiresDeceased(t *testing.T) {
	s := newTestState()
	register(t, s, "alice", day, day, t0)
	_, err := s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: testContent(1)})
	require.NoError(t, err)

	_, err = s.claim("bob", t0.Add(time.Hour), ClaimParams{Account: "alice", Index: 0})
	require.ErrorIs(t, err, ErrAccountNotDeceased)
}

// Scenario B: within 24 hours of the declaration only the notifier can
// claim; afterwards anyone can claim a different message.
func TestScenarioB_NotifierExclusivity(t *testing.T) {
	s := newTestState()
	declaredAt := deceasedAccount(t, s)

	oneHour := declaredAt.Add(time.Hour)
	_, err := s.claim("stranger", oneHour, ClaimParams{Account: "alice", Index: 0})
	require.ErrorIs(t, err, ErrNotifierOnly)

	res, err := s.claim("notifier", oneHour, ClaimParams{Account: "alice", Index: 0})
	require.NoError(t, err)
	require.Equal(t, "notifier", s.accounts["alice"].Messages[0].ClaimedBy)
	// Grant requests: key share plus every limb.
	require.Len(t, res.Grants, RecipientIDLimbs+1)
	for _, g := range res.Grants {
		require.Equal(t, "notifier", g.Grantee)
	}

	after := declaredAt.Add(25 * time.Hour)
	_, err = s.claim("third", after, ClaimParams{Account: "alice", Index: 1})
	require.NoError(t, err)
	require.Equal(t, "third", s.accounts["alice"].Messages[1].ClaimedBy)
}

func TestClaim_ExactlyOnce(t *testing.T) {
	s := newTestState()
	declaredAt := deceasedAccount(t, s)
	after := declaredAt.Add(NotifierWindow).Add(time.Second)

	_, err := s.claim("first", after, ClaimParams{Account: "alice", Index: 0})
	require.NoError(t, err)

	_, err = s.claim("second", after.Add(time.Second), ClaimParams{Account: "alice", Index: 0})
	require.ErrorIs(t, err, ErrMessageClaimed)
	// The loser observes a rejection; the winner's claim is untouched.
	require.Equal(t, "first", s.accounts["alice"].Messages[0].ClaimedBy)

	_, err = s.claim("first", after.Add(time.Second), ClaimParams{Account: "alice", Index: 0})
	require.ErrorIs(t, err, ErrMessageClaimed, "claim is not idempotent")
}

func TestClaim_RevokedNeverClaimable(t *testing.T) {
	s := newTestState()
	register(t, s, "alice", day, day, t0)
	_, err := s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: testContent(1)})
	require.NoError(t, err)
	_, err = s.revokeMessage("alice", t0.Add(2*time.Minute), RevokeMessageParams{Index: 0})
	require.NoError(t, err)

	declaredAt := t0.Add(2*day + time.Second)
	_, err = s.markDeceased("notifier", declaredAt, MarkDeceasedParams{Account: "alice"})
	require.NoError(t, err)

	_, err = s.claim("notifier", declaredAt.Add(time.Minute), ClaimParams{Account: "alice", Index: 0})
	require.ErrorIs(t, err, ErrMessageRevoked)
}

func TestClaim_DeFactoDeceasedHasNoExclusivity(t *testing.T) {
	s := newTestState()
	register(t, s, "alice", day, day, t0)
	_, err := s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: testContent(1)})
	require.NoError(t, err)

	// No declaration: the account timed out silently, so there is no
	// notifier and no exclusive window.
	late := t0.Add(2*day + time.Second)
	_, err = s.claim("anyone", late, ClaimParams{Account: "alice", Index: 0})
	require.NoError(t, err)
}

func TestRetrieve_AccessRules(t *testing.T) {
	s := newTestState()
	register(t, s, "alice", day, day, t0)
	content := testContent(1)
	_, err := s.addMessage("alice", t0.Add(time.Minute), AddMessageParams{MessageParams: content})
	require.NoError(t, err)

	// Owner reads pre-mortem.
	got, err := s.Retrieve("alice", "alice", 0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, content.Limbs, got.Limbs)
	require.Equal(t, content.Payload, got.Payload)
	require.Equal(t, content.Commitment, got.Commitment)

	// Strangers cannot read while alive.
	_, err = s.Retrieve("bob", "alice", 0, t0.Add(time.Hour))
	require.ErrorIs(t, err, ErrNotAuthorized)

	declaredAt := t0.Add(2*day + time.Second)
	_, err = s.markDeceased("notifier", declaredAt, MarkDeceasedParams{Account: "alice"})
	require.NoError(t, err)

	// Deceased but unclaimed: still no third-party access.
	_, err = s.Retrieve("bob", "alice", 0, declaredAt.Add(time.Minute))
	require.ErrorIs(t, err, ErrMessageNotClaimed)

	_, err = s.claim("notifier", declaredAt.Add(time.Minute), ClaimParams{Account: "alice", Index: 0})
	require.NoError(t, err)

	// Only the recorded claimant reads post-claim.
	_, err = s.Retrieve("bob", "alice", 0, declaredAt.Add(time.Hour))
	require.ErrorIs(t, err, ErrNotClaimant)
	got, err = s.Retrieve("notifier", "alice", 0, declaredAt.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, content.KeyShare, got.KeyShare)
	require.Equal(t, content.RecipientIDLen, got.RecipientIDLen)
}
