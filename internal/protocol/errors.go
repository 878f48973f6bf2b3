package protocol

import "errors"

// Sentinel errors returned by protocol operations. Callers match them with
// errors.Is; KindOf classifies them for transport mapping.
var (
	// Input validation.
	ErrNameTooLong       = errors.New("name exceeds maximum length")
	ErrPeriodTooShort    = errors.New("period below minimum")
	ErrZeroAmount        = errors.New("amount must be positive")
	ErrRecipientIDLength = errors.New("recipient identifier length out of range")
	ErrLimbCount         = errors.New("confidential limb count mismatch")
	ErrPayloadSize       = errors.New("payload empty or exceeds maximum size")
	ErrRecipientCount    = errors.New("recipient commitment count out of range")
	ErrZeroReward        = errors.New("reward must be positive")
	ErrRewardTooSmall    = errors.New("reward below protocol minimum")
	ErrRecipientIndex    = errors.New("recipient index out of range")

	// State preconditions.
	ErrAlreadyRegistered  = errors.New("account already registered")
	ErrNotAlive           = errors.New("account is not alive")
	ErrAccountDeceased    = errors.New("account is deceased")
	ErrAccountNotDeceased = errors.New("account is not deceased")
	ErrDeadlineNotPassed  = errors.New("grace deadline has not passed")
	ErrFinalAlive         = errors.New("account is confirmed alive")
	ErrNotInGrace         = errors.New("account is not in grace")
	ErrAlreadyVoted       = errors.New("member already voted this epoch")
	ErrVoteDecided        = errors.New("vote already decided")
	ErrMessageClaimed     = errors.New("message already claimed")
	ErrMessageRevoked     = errors.New("message revoked")
	ErrMessageNotClaimed  = errors.New("message not claimed")
	ErrAlreadyProven      = errors.New("recipient already proven")
	ErrDeliveryIncomplete = errors.New("not all recipients proven")
	ErrRewardAlreadyPaid  = errors.New("reward already paid")
	ErrNoRecipients       = errors.New("message has no recipients")
	ErrDuplicateMessage   = errors.New("duplicate message commitment")
	ErrCouncilFull        = errors.New("council roster full")
	ErrSelfCouncil        = errors.New("cannot serve on own council")
	ErrDuplicateMember    = errors.New("already a council member")

	// Authorization.
	ErrNotCouncilMember = errors.New("caller is not a council member")
	ErrNotClaimant      = errors.New("caller is not the claimant")
	ErrNotifierOnly     = errors.New("claim reserved for notifier")
	ErrNotAuthorized    = errors.New("caller not authorized")

	// Integrity.
	ErrCommitmentMismatch = errors.New("commitment mismatch")
	ErrUntrustedAuthKey   = errors.New("authenticity key not in trust set")
	ErrProofRejected      = errors.New("proof rejected")

	// Resources.
	ErrInsufficientDeposit = errors.New("insufficient deposit")

	// Lookups.
	ErrUnknownAccount = errors.New("unknown account")
	ErrUnknownMessage = errors.New("unknown message")
	ErrUnknownMember  = errors.New("unknown council member")
	ErrUnknownOp      = errors.New("unknown operation")
)

// Kind is the error taxonomy class of a protocol rejection.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPrecondition
	KindAuthorization
	KindIntegrity
	KindResource
	KindNotFound
)

var errorKinds = map[Kind][]error{
	KindValidation: {
		ErrNameTooLong, ErrPeriodTooShort, ErrZeroAmount, ErrRecipientIDLength,
		ErrLimbCount, ErrPayloadSize, ErrRecipientCount, ErrZeroReward,
		ErrRewardTooSmall, ErrRecipientIndex, ErrUnknownOp,
	},
	KindPrecondition: {
		ErrAlreadyRegistered, ErrNotAlive, ErrAccountDeceased,
		ErrAccountNotDeceased, ErrDeadlineNotPassed, ErrFinalAlive,
		ErrNotInGrace, ErrAlreadyVoted, ErrVoteDecided, ErrMessageClaimed,
		ErrMessageRevoked, ErrMessageNotClaimed, ErrAlreadyProven,
		ErrDeliveryIncomplete, ErrRewardAlreadyPaid, ErrNoRecipients,
		ErrDuplicateMessage, ErrCouncilFull, ErrSelfCouncil, ErrDuplicateMember,
	},
	KindAuthorization: {
		ErrNotCouncilMember, ErrNotClaimant, ErrNotifierOnly, ErrNotAuthorized,
	},
	KindIntegrity: {
		ErrCommitmentMismatch, ErrUntrustedAuthKey, ErrProofRejected,
	},
	KindResource: {
		ErrInsufficientDeposit,
	},
	KindNotFound: {
		ErrUnknownAccount, ErrUnknownMessage, ErrUnknownMember,
	},
}

// KindOf classifies err into the protocol error taxonomy. Wrapped errors are
// matched with errors.Is. Unrecognized errors report KindUnknown.
func KindOf(err error) Kind {
	for kind, list := range errorKinds {
		for _, sentinel := range list {
			if errors.Is(err, sentinel) {
				return kind
			}
		}
	}
	return KindUnknown
}
