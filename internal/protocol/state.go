package protocol

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// Op identifies a mutating protocol operation in the journal.
type Op string

const (
	OpRegister             Op = "register"
	OpSetName              Op = "set_name"
	OpSetPeriods           Op = "set_periods"
	OpDeposit              Op = "deposit"
	OpPing                 Op = "ping"
	OpMarkDeceased         Op = "mark_deceased"
	OpAddCouncilMember     Op = "add_council_member"
	OpRemoveCouncilMember  Op = "remove_council_member"
	OpVoteOnStatus         Op = "vote_on_status"
	OpAddMessage           Op = "add_message"
	OpAddMessageWithReward Op = "add_message_with_reward"
	OpEditMessage          Op = "edit_message"
	OpRevokeMessage        Op = "revoke_message"
	OpClaim                Op = "claim"
	OpProveDelivery        Op = "prove_delivery"
	OpClaimReward          Op = "claim_reward"
)

// Tx is one submitted transaction: the unit of journaling and replay.
// Impure inputs (wall-clock time, the external verifier verdict) are resolved
// before the transaction is journaled, which keeps Apply deterministic.
type Tx struct {
	Seq    uint64          `json:"seq"`
	Time   time.Time       `json:"time"`
	Caller string          `json:"caller"`
	Op     Op              `json:"op"`
	Params json.RawMessage `json:"params"`
}

// GrantRequest asks the confidential store to issue an irrevocable
// decryption capability for a handle to a grantee.
type GrantRequest struct {
	Handle  Handle `json:"handle"`
	Grantee string `json:"grantee"`
}

// Result carries the side effects of a successfully applied transaction.
type Result struct {
	Events []Event
	Grants []GrantRequest
}

// Operation parameter payloads. All fields must round-trip through JSON
// unchanged; the journal is the source of truth on replay.

type RegisterParams struct {
	Name          string        `json:"name"`
	CheckInPeriod time.Duration `json:"check_in_period"`
	GracePeriod   time.Duration `json:"grace_period"`
}

type SetNameParams struct {
	Name string `json:"name"`
}

type SetPeriodsParams struct {
	CheckInPeriod time.Duration `json:"check_in_period"`
	GracePeriod   time.Duration `json:"grace_period"`
}

type DepositParams struct {
	Amount uint64 `json:"amount"`
}

type MarkDeceasedParams struct {
	Account string `json:"account"`
}

type CouncilMemberParams struct {
	Member string `json:"member"`
}

type VoteParams struct {
	Account string `json:"account"`
	Alive   bool   `json:"alive"`
}

// MessageParams are the content fields shared by add and edit operations.
// Limb and key-share ciphertexts are ingested into the confidential store
// before journaling; only the resulting handles appear here.
type MessageParams struct {
	Limbs          []Handle   `json:"limbs"`
	RecipientIDLen int        `json:"recipient_id_len"`
	KeyShare       Handle     `json:"key_share"`
	Payload        []byte     `json:"payload"`
	Annotation     string     `json:"annotation,omitempty"`
	Commitment     Commitment `json:"commitment"`
}

type AddMessageParams struct {
	MessageParams
}

type AddMessageWithRewardParams struct {
	MessageParams
	Reward      uint64       `json:"reward"`
	Recipients  []Commitment `json:"recipients"`
	ContentHash Commitment   `json:"content_hash"`
}

type EditMessageParams struct {
	Index int `json:"index"`
	MessageParams
	ContentHash Commitment `json:"content_hash,omitempty"`
}

type RevokeMessageParams struct {
	Index int `json:"index"`
}

type ClaimParams struct {
	Account string `json:"account"`
	Index   int    `json:"index"`
}

type ProveDeliveryParams struct {
	Account             string     `json:"account"`
	Index               int        `json:"index"`
	Recipient           int        `json:"recipient"`
	RecipientCommitment Commitment `json:"recipient_commitment"`
	AuthKeyCommitment   Commitment `json:"auth_key_commitment"`
	ContentCommitment   Commitment `json:"content_commitment"`
	Verified            bool       `json:"verified"`
}

type ClaimRewardParams struct {
	Account string `json:"account"`
	Index   int    `json:"index"`
}

type rewardKey struct {
	account string
	index   int
}

// State is the authoritative protocol state. It is not safe for concurrent
// use; the engine serializes access, which is what gives transactions their
// total order.
type State struct {
	accounts map[string]*Account
	// memberOf is the reverse council index: member address -> set of
	// account addresses served. It mutates together with the forward
	// rosters inside the same operation.
	memberOf    map[string]map[string]struct{}
	balances    map[string]uint64
	paidRewards map[rewardKey]struct{}
	// trustedAuthKeys is the configured authenticity-key trust set used by
	// proveDelivery. It is fixed at construction; an empty set fails closed.
	trustedAuthKeys map[Commitment]struct{}
	seq             uint64
}

// NewState builds an empty state with the given authenticity-key trust set.
func NewState(trustedAuthKeys []Commitment) *State {
	trusted := make(map[Commitment]struct{}, len(trustedAuthKeys))
	for _, k := range trustedAuthKeys {
		trusted[k] = struct{}{}
	}
	return &State{
		accounts:        make(map[string]*Account),
		memberOf:        make(map[string]map[string]struct{}),
		balances:        make(map[string]uint64),
		paidRewards:     make(map[rewardKey]struct{}),
		trustedAuthKeys: trusted,
	}
}

// LastSeq returns the sequence number of the last applied transaction.
func (s *State) LastSeq() uint64 { return s.seq }

// Apply dispatches one journaled transaction. It advances the sequence
// counter whether or not the operation succeeds: rejected transactions are
// part of the ledger too, and replaying them must reject deterministically.
func (s *State) Apply(tx Tx) (*Result, error) {
	s.seq = tx.Seq
	switch tx.Op {
	case OpRegister:
		return dispatch(s, tx, s.register)
	case OpSetName:
		return dispatch(s, tx, s.setName)
	case OpSetPeriods:
		return dispatch(s, tx, s.setPeriods)
	case OpDeposit:
		return dispatch(s, tx, s.deposit)
	case OpPing:
		return dispatch(s, tx, s.ping)
	case OpMarkDeceased:
		return dispatch(s, tx, s.markDeceased)
	case OpAddCouncilMember:
		return dispatch(s, tx, s.addCouncilMember)
	case OpRemoveCouncilMember:
		return dispatch(s, tx, s.removeCouncilMember)
	case OpVoteOnStatus:
		return dispatch(s, tx, s.voteOnStatus)
	case OpAddMessage:
		return dispatch(s, tx, s.addMessage)
	case OpAddMessageWithReward:
		return dispatch(s, tx, s.addMessageWithReward)
	case OpEditMessage:
		return dispatch(s, tx, s.editMessage)
	case OpRevokeMessage:
		return dispatch(s, tx, s.revokeMessage)
	case OpClaim:
		return dispatch(s, tx, s.claim)
	case OpProveDelivery:
		return dispatch(s, tx, s.proveDelivery)
	case OpClaimReward:
		return dispatch(s, tx, s.claimReward)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, tx.Op)
	}
}

// dispatch unmarshals the op-specific parameters and invokes the handler.
func dispatch[P any](s *State, tx Tx, fn func(caller string, now time.Time, p P) (*Result, error)) (*Result, error) {
	var p P
	if len(tx.Params) > 0 {
		if err := json.Unmarshal(tx.Params, &p); err != nil {
			return nil, fmt.Errorf("%w: bad params: %v", ErrUnknownOp, err)
		}
	}
	return fn(tx.Caller, tx.Time, p)
}

// account returns the registered account or ErrUnknownAccount.
func (s *State) account(address string) (*Account, error) {
	a, ok := s.accounts[address]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return a, nil
}

// message returns the message at index or ErrUnknownMessage.
func (a *Account) message(index int) (*Message, error) {
	if index < 0 || index >= len(a.Messages) {
		return nil, ErrUnknownMessage
	}
	return a.Messages[index], nil
}

// --- Read accessors (no journaling; callers hold the engine read lock) ---

// AccountInfo is the public projection of an account.
type AccountInfo struct {
	Address       string        `json:"address"`
	Name          string        `json:"name"`
	CheckInPeriod time.Duration `json:"check_in_period"`
	GracePeriod   time.Duration `json:"grace_period"`
	LastCheckIn   time.Time     `json:"last_check_in"`
	RegisteredOn  time.Time     `json:"registered_on"`
	Deceased      bool          `json:"deceased"`
	FinalAlive    bool          `json:"final_alive"`
	Notifier      string        `json:"notifier,omitempty"`
	NotifiedAt    time.Time     `json:"notified_at,omitzero"`
	Deposit       uint64        `json:"deposit"`
	LockedRewards uint64        `json:"locked_rewards"`
	MessageCount  int           `json:"message_count"`
}

// StatusOf derives the liveness status of an account at the given instant.
func (s *State) StatusOf(address string, now time.Time) (Status, time.Duration, error) {
	a, err := s.account(address)
	if err != nil {
		return 0, 0, err
	}
	status, remaining := a.StatusAt(now)
	return status, remaining, nil
}

// GetAccount returns the public projection of an account.
func (s *State) GetAccount(address string) (*AccountInfo, error) {
	a, err := s.account(address)
	if err != nil {
		return nil, err
	}
	return &AccountInfo{
		Address:       a.Address,
		Name:          a.Name,
		CheckInPeriod: a.CheckInPeriod,
		GracePeriod:   a.GracePeriod,
		LastCheckIn:   a.LastCheckIn,
		RegisteredOn:  a.RegisteredOn,
		Deceased:      a.Deceased,
		FinalAlive:    a.FinalAlive,
		Notifier:      a.Notifier,
		NotifiedAt:    a.NotifiedAt,
		Deposit:       s.balances[a.Address],
		LockedRewards: a.LockedRewards,
		MessageCount:  len(a.Messages),
	}, nil
}

// Balance returns the free balance of an address (zero for unknown).
func (s *State) Balance(address string) uint64 { return s.balances[address] }

// CouncilOf returns a copy of an account's roster.
func (s *State) CouncilOf(address string) ([]CouncilMember, error) {
	a, err := s.account(address)
	if err != nil {
		return nil, err
	}
	roster := make([]CouncilMember, 0, len(a.Council))
	for _, m := range a.Council {
		roster = append(roster, *m)
	}
	return roster, nil
}

// AccountsServedBy returns the addresses whose councils include member.
func (s *State) AccountsServedBy(member string) []string {
	set := s.memberOf[member]
	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	return out
}

// Tally is the public view of an account's current vote epoch.
type Tally struct {
	Epoch         uint64 `json:"epoch"`
	RosterSize    int    `json:"roster_size"`
	Alive         int    `json:"alive"`
	Dead          int    `json:"dead"`
	Decided       bool   `json:"decided"`
	DecisionAlive bool   `json:"decision_alive"`
}

// VoteTally returns the running tallies of the account's vote epoch.
func (s *State) VoteTally(address string) (*Tally, error) {
	a, err := s.account(address)
	if err != nil {
		return nil, err
	}
	return &Tally{
		Epoch:         a.Vote.Epoch,
		RosterSize:    len(a.Council),
		Alive:         a.Vote.Alive,
		Dead:          a.Vote.Dead,
		Decided:       a.Vote.Decided,
		DecisionAlive: a.Vote.DecisionAlive,
	}, nil
}

// MessageInfo is the public projection of a message. Confidential handles
// are excluded; retrieve returns those under its access rules.
type MessageInfo struct {
	Index       int        `json:"index"`
	PayloadSize int        `json:"payload_size"`
	Annotation  string     `json:"annotation,omitempty"`
	Commitment  Commitment `json:"commitment"`
	Claimed     bool       `json:"claimed"`
	ClaimedBy   string     `json:"claimed_by,omitempty"`
	Revoked     bool       `json:"revoked"`
	Reward      uint64     `json:"reward"`
	Recipients  int        `json:"recipients"`
	ProvenBits  string     `json:"proven_bits"`
	RewardPaid  bool       `json:"reward_paid"`
}

// GetMessage returns the public projection of a message.
func (s *State) GetMessage(address string, index int) (*MessageInfo, error) {
	a, err := s.account(address)
	if err != nil {
		return nil, err
	}
	m, err := a.message(index)
	if err != nil {
		return nil, err
	}
	proven := "0"
	if m.Proven != nil {
		proven = m.Proven.Text(2)
	}
	_, paid := s.paidRewards[rewardKey{account: address, index: index}]
	return &MessageInfo{
		Index:       m.Index,
		PayloadSize: len(m.Payload),
		Annotation:  m.Annotation,
		Commitment:  m.Commitment,
		Claimed:     m.Claimed,
		ClaimedBy:   m.ClaimedBy,
		Revoked:     m.Revoked,
		Reward:      m.Reward,
		Recipients:  len(m.Recipients),
		ProvenBits:  proven,
		RewardPaid:  paid,
	}, nil
}

// ProofBitmap returns a copy of the message's proven-recipient bitmap.
func (s *State) ProofBitmap(address string, index int) (*big.Int, error) {
	a, err := s.account(address)
	if err != nil {
		return nil, err
	}
	m, err := a.message(index)
	if err != nil {
		return nil, err
	}
	if m.Proven == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(m.Proven), nil
}
