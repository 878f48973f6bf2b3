package protocol

import "time"

// proveDelivery marks one recipient of a claimed message as proven. The
// caller must be the claimant; the three public commitments must match the
// stored ones; and the externally-obtained verifier verdict (resolved before
// journaling) must be affirmative. Every check fails closed.
func (s *State) proveDelivery(caller string, now time.Time, p ProveDeliveryParams) (*Result, error) {
	a, err := s.account(p.Account)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status != StatusDeceased {
		return nil, ErrAccountNotDeceased
	}
	m, err := a.message(p.Index)
	if err != nil {
		return nil, err
	}
	if !m.Claimed {
		return nil, ErrMessageNotClaimed
	}
	if caller != m.ClaimedBy {
		return nil, ErrNotClaimant
	}
	if len(m.Recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if p.Recipient < 0 || p.Recipient >= len(m.Recipients) {
		return nil, ErrRecipientIndex
	}
	if m.Proven.Bit(p.Recipient) == 1 {
		return nil, ErrAlreadyProven
	}
	if p.RecipientCommitment != m.Recipients[p.Recipient] {
		return nil, ErrCommitmentMismatch
	}
	if _, trusted := s.trustedAuthKeys[p.AuthKeyCommitment]; !trusted {
		return nil, ErrUntrustedAuthKey
	}
	if p.ContentCommitment != m.ContentHash {
		return nil, ErrCommitmentMismatch
	}
	if !p.Verified {
		return nil, ErrProofRejected
	}

	m.Proven.SetBit(m.Proven, p.Recipient, 1)
	return &Result{Events: []Event{
		{Type: EventDeliveryProven, Data: DeliveryProvenEventData{
			Address: p.Account, Index: p.Index, Recipient: p.Recipient,
		}},
	}}, nil
}

// claimReward releases the escrowed reward once every recipient has been
// proven. The payout record is keyed by (account, index), so a second claim
// is rejected before any balance moves. Escrow bookkeeping is committed in
// the same atomic operation as the credit; nothing can observe the locked
// counter and the payout in a half-applied state.
func (s *State) claimReward(caller string, _ time.Time, p ClaimRewardParams) (*Result, error) {
	a, err := s.account(p.Account)
	if err != nil {
		return nil, err
	}
	m, err := a.message(p.Index)
	if err != nil {
		return nil, err
	}
	if !m.Claimed {
		return nil, ErrMessageNotClaimed
	}
	if caller != m.ClaimedBy {
		return nil, ErrNotClaimant
	}
	key := rewardKey{account: p.Account, index: p.Index}
	if _, paid := s.paidRewards[key]; paid {
		return nil, ErrRewardAlreadyPaid
	}
	if m.Reward == 0 {
		return nil, ErrZeroReward
	}
	if !m.provenFull() {
		return nil, ErrDeliveryIncomplete
	}

	amount := m.Reward
	s.paidRewards[key] = struct{}{}
	m.Reward = 0
	a.LockedRewards -= amount
	s.balances[caller] += amount
	return &Result{Events: []Event{
		{Type: EventRewardPaid, Data: RewardPaidEventData{
			Address: p.Account, Index: p.Index, Claimant: caller, Amount: amount,
		}},
	}}, nil
}
