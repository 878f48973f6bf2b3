package protocol

// EventType names a protocol state transition. One event is emitted for every
// transition so off-process indexers can follow the ledger.
type EventType string

const (
	EventAccountRegistered    EventType = "account.registered"
	EventCheckIn              EventType = "account.checked_in"
	EventNameUpdated          EventType = "account.name_updated"
	EventPeriodsUpdated       EventType = "account.periods_updated"
	EventDeposit              EventType = "account.deposit"
	EventDeathDeclared        EventType = "account.death_declared"
	EventCouncilMemberAdded   EventType = "council.member_added"
	EventCouncilMemberRemoved EventType = "council.member_removed"
	EventVoteCast             EventType = "council.vote_cast"
	EventVoteDecided          EventType = "council.vote_decided"
	EventMessageAdded         EventType = "message.added"
	EventMessageEdited        EventType = "message.edited"
	EventMessageRevoked       EventType = "message.revoked"
	EventMessageClaimed       EventType = "message.claimed"
	EventDeliveryProven       EventType = "message.delivery_proven"
	EventRewardPaid           EventType = "message.reward_paid"
)

// Event pairs a transition type with its payload. Payload types are the
// *EventData structs below.
type Event struct {
	Type EventType
	Data any
}

type AccountEventData struct {
	Address string `json:"address"`
}

type DepositEventData struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type DeathDeclaredEventData struct {
	Address  string `json:"address"`
	Notifier string `json:"notifier"`
}

type CouncilEventData struct {
	Address string `json:"address"`
	Member  string `json:"member"`
}

type VoteCastEventData struct {
	Address string `json:"address"`
	Member  string `json:"member"`
	Alive   bool   `json:"alive"`
	Epoch   uint64 `json:"epoch"`
}

type VoteDecidedEventData struct {
	Address string `json:"address"`
	Alive   bool   `json:"alive"`
	Epoch   uint64 `json:"epoch"`
}

type MessageEventData struct {
	Address string `json:"address"`
	Index   int    `json:"index"`
}

type MessageClaimedEventData struct {
	Address  string `json:"address"`
	Index    int    `json:"index"`
	Claimant string `json:"claimant"`
}

type DeliveryProvenEventData struct {
	Address   string `json:"address"`
	Index     int    `json:"index"`
	Recipient int    `json:"recipient"`
}

type RewardPaidEventData struct {
	Address  string `json:"address"`
	Index    int    `json:"index"`
	Claimant string `json:"claimant"`
	Amount   uint64 `json:"amount"`
}
