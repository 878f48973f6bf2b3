package protocol

import "time"

// claim marks a message claimed-by-caller and requests decryption grants for
// the key share and every recipient-identifier limb. Grants are append-only
// and never retracted, even from a claimant later shown malicious; that
// monotonicity is a documented protocol property, not an oversight.
func (s *State) claim(caller string, now time.Time, p ClaimParams) (*Result, error) {
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
	if m.Revoked {
		return nil, ErrMessageRevoked
	}
	if m.Claimed {
		return nil, ErrMessageClaimed
	}
	// Notifier exclusivity: for NotifierWindow after the declaration only
	// the notifier may claim. An account that timed out without an explicit
	// declaration has no notifier and no exclusivity.
	if a.Notifier != "" && caller != a.Notifier && now.Before(a.NotifiedAt.Add(NotifierWindow)) {
		return nil, ErrNotifierOnly
	}

	m.Claimed = true
	m.ClaimedBy = caller
	grants := make([]GrantRequest, 0, len(m.Limbs)+1)
	grants = append(grants, GrantRequest{Handle: m.KeyShare, Grantee: caller})
	for _, limb := range m.Limbs {
		grants = append(grants, GrantRequest{Handle: limb, Grantee: caller})
	}
	return &Result{
		Events: []Event{
			{Type: EventMessageClaimed, Data: MessageClaimedEventData{
				Address: p.Account, Index: m.Index, Claimant: caller,
			}},
		},
		Grants: grants,
	}, nil
}

// RetrieveResult is the full message view returned to an authorized reader.
// The handles are opaque: without a confidential-store grant they cannot be
// opened, so returning them to the claimant leaks nothing by themselves.
type RetrieveResult struct {
	Limbs          []Handle   `json:"limbs"`
	RecipientIDLen int        `json:"recipient_id_len"`
	KeyShare       Handle     `json:"key_share"`
	Payload        []byte     `json:"payload"`
	Annotation     string     `json:"annotation,omitempty"`
	Commitment     Commitment `json:"commitment"`
}

// Retrieve returns the message content to the owner (always) or to the
// recorded claimant of a claimed message on a deceased account. Anyone else
// is rejected. Read-only: not journaled.
func (s *State) Retrieve(caller, owner string, index int, now time.Time) (*RetrieveResult, error) {
	a, err := s.account(owner)
	if err != nil {
		return nil, err
	}
	m, err := a.message(index)
	if err != nil {
		return nil, err
	}
	if caller != owner {
		if status, _ := a.StatusAt(now); status != StatusDeceased {
			return nil, ErrNotAuthorized
		}
		if !m.Claimed {
			return nil, ErrMessageNotClaimed
		}
		if caller != m.ClaimedBy {
			return nil, ErrNotClaimant
		}
	}
	return &RetrieveResult{
		Limbs:          append([]Handle(nil), m.Limbs...),
		RecipientIDLen: m.RecipientIDLen,
		KeyShare:       m.KeyShare,
		Payload:        append([]byte(nil), m.Payload...),
		Annotation:     m.Annotation,
		Commitment:     m.Commitment,
	}, nil
}
