package protocol

import (
	"math/big"
	"time"
)

// validateContent checks the shared content fields of add and edit.
func validateContent(p MessageParams) error {
	if p.RecipientIDLen <= 0 || p.RecipientIDLen > MaxRecipientIDLen {
		return ErrRecipientIDLength
	}
	// The limb count is fixed regardless of the true identifier length so
	// the stored shape never leaks it.
	if len(p.Limbs) != RecipientIDLimbs {
		return ErrLimbCount
	}
	if len(p.Payload) == 0 || len(p.Payload) > MaxPayloadSize {
		return ErrPayloadSize
	}
	return nil
}

// duplicateCommitment reports whether a live (non-revoked) message other than
// exclude already carries the commitment.
func (a *Account) duplicateCommitment(c Commitment, exclude int) bool {
	for _, m := range a.Messages {
		if m.Index == exclude || m.Revoked {
			continue
		}
		if m.Commitment == c {
			return true
		}
	}
	return false
}

// addMessage appends a message without a reward. The owner must be alive.
func (s *State) addMessage(caller string, now time.Time, p AddMessageParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status != StatusAlive {
		return nil, ErrNotAlive
	}
	if err := validateContent(p.MessageParams); err != nil {
		return nil, err
	}
	if a.duplicateCommitment(p.Commitment, -1) {
		return nil, ErrDuplicateMessage
	}
	m := &Message{
		Index:          len(a.Messages),
		Limbs:          append([]Handle(nil), p.Limbs...),
		RecipientIDLen: p.RecipientIDLen,
		KeyShare:       p.KeyShare,
		Payload:        append([]byte(nil), p.Payload...),
		Annotation:     p.Annotation,
		Commitment:     p.Commitment,
		Proven:         new(big.Int),
	}
	a.Messages = append(a.Messages, m)
	return &Result{Events: []Event{
		{Type: EventMessageAdded, Data: MessageEventData{Address: caller, Index: m.Index}},
	}}, nil
}

// addMessageWithReward appends a message with recipient commitments and an
// escrowed reward. The reward moves from the owner's free balance to the
// account's locked-reward counter before the message becomes visible.
func (s *State) addMessageWithReward(caller string, now time.Time, p AddMessageWithRewardParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status != StatusAlive {
		return nil, ErrNotAlive
	}
	if err := validateContent(p.MessageParams); err != nil {
		return nil, err
	}
	if p.Reward == 0 {
		return nil, ErrZeroReward
	}
	if p.Reward < MinReward(len(p.Payload)) {
		return nil, ErrRewardTooSmall
	}
	if len(p.Recipients) == 0 || len(p.Recipients) > MaxRecipients {
		return nil, ErrRecipientCount
	}
	if s.balances[caller] < p.Reward {
		return nil, ErrInsufficientDeposit
	}
	if a.duplicateCommitment(p.Commitment, -1) {
		return nil, ErrDuplicateMessage
	}

	s.balances[caller] -= p.Reward
	a.LockedRewards += p.Reward
	m := &Message{
		Index:          len(a.Messages),
		Limbs:          append([]Handle(nil), p.Limbs...),
		RecipientIDLen: p.RecipientIDLen,
		KeyShare:       p.KeyShare,
		Payload:        append([]byte(nil), p.Payload...),
		Annotation:     p.Annotation,
		Commitment:     p.Commitment,
		Reward:         p.Reward,
		Recipients:     append([]Commitment(nil), p.Recipients...),
		ContentHash:    p.ContentHash,
		Proven:         new(big.Int),
	}
	a.Messages = append(a.Messages, m)
	return &Result{Events: []Event{
		{Type: EventMessageAdded, Data: MessageEventData{Address: caller, Index: m.Index}},
	}}, nil
}

// editMessage replaces the content of an unclaimed, unrevoked message. The
// old content commitment is superseded by the new one; the reward and the
// recipient commitment list stay as escrowed, though the proof-matching hash
// may be updated alongside the content.
func (s *State) editMessage(caller string, now time.Time, p EditMessageParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status == StatusDeceased {
		return nil, ErrAccountDeceased
	}
	m, err := a.message(p.Index)
	if err != nil {
		return nil, err
	}
	if m.Revoked {
		return nil, ErrMessageRevoked
	}
	if m.Claimed {
		return nil, ErrMessageClaimed
	}
	if err := validateContent(p.MessageParams); err != nil {
		return nil, err
	}
	if a.duplicateCommitment(p.Commitment, m.Index) {
		return nil, ErrDuplicateMessage
	}

	m.Limbs = append([]Handle(nil), p.Limbs...)
	m.RecipientIDLen = p.RecipientIDLen
	m.KeyShare = p.KeyShare
	m.Payload = append([]byte(nil), p.Payload...)
	m.Annotation = p.Annotation
	m.Commitment = p.Commitment
	if len(m.Recipients) > 0 {
		var zero Commitment
		if p.ContentHash != zero {
			m.ContentHash = p.ContentHash
		}
	}
	return &Result{Events: []Event{
		{Type: EventMessageEdited, Data: MessageEventData{Address: caller, Index: m.Index}},
	}}, nil
}

// revokeMessage sets the terminal revoked flag and refunds any escrowed
// reward. The refund is committed to state before any observer can read the
// message as revoked; there is no window where both the flag and the escrow
// are live.
func (s *State) revokeMessage(caller string, now time.Time, p RevokeMessageParams) (*Result, error) {
	a, err := s.account(caller)
	if err != nil {
		return nil, err
	}
	if status, _ := a.StatusAt(now); status == StatusDeceased {
		return nil, ErrAccountDeceased
	}
	m, err := a.message(p.Index)
	if err != nil {
		return nil, err
	}
	if m.Revoked {
		return nil, ErrMessageRevoked
	}
	if m.Claimed {
		return nil, ErrMessageClaimed
	}
	m.Revoked = true
	if m.Reward > 0 {
		a.LockedRewards -= m.Reward
		s.balances[caller] += m.Reward
		m.Reward = 0
	}
	return &Result{Events: []Event{
		{Type: EventMessageRevoked, Data: MessageEventData{Address: caller, Index: m.Index}},
	}}, nil
}
