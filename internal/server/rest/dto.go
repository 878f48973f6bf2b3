package rest

import (
	"github.com/dmitrijs2005/heirloom/internal/timex"
)

// Auth DTOs.

type credentialsRequest struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Account DTOs. Durations accept "720h" style strings or nanosecond ints.

type registerAccountRequest struct {
	Name          string         `json:"name"`
	CheckInPeriod timex.Duration `json:"check_in_period"`
	GracePeriod   timex.Duration `json:"grace_period"`
}

type setNameRequest struct {
	Name string `json:"name"`
}

type setPeriodsRequest struct {
	CheckInPeriod timex.Duration `json:"check_in_period"`
	GracePeriod   timex.Duration `json:"grace_period"`
}

type depositRequest struct {
	Amount uint64 `json:"amount"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Remaining string `json:"remaining,omitempty"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// Council DTOs.

type councilMemberRequest struct {
	Member string `json:"member"`
}

type voteRequest struct {
	Alive bool `json:"alive"`
}

type servingResponse struct {
	Accounts []string `json:"accounts"`
}

// Message DTOs. Byte slices ride as base64; commitments as hex strings.

type messageContentRequest struct {
	Limbs          [][]byte `json:"limbs"`
	RecipientIDLen int      `json:"recipient_id_len"`
	KeyShare       []byte   `json:"key_share"`
	Payload        []byte   `json:"payload"`
	Annotation     string   `json:"annotation,omitempty"`
}

type addMessageRequest struct {
	messageContentRequest
	Reward      uint64   `json:"reward,omitempty"`
	Recipients  []string `json:"recipients,omitempty"`
	ContentHash string   `json:"content_hash,omitempty"`
}

type editMessageRequest struct {
	messageContentRequest
	ContentHash string `json:"content_hash,omitempty"`
}

type messageIndexResponse struct {
	Index int `json:"index"`
}

type proveDeliveryRequest struct {
	Recipient           int    `json:"recipient"`
	RecipientCommitment string `json:"recipient_commitment"`
	AuthKeyCommitment   string `json:"auth_key_commitment"`
	ContentCommitment   string `json:"content_commitment"`
	Proof               []byte `json:"proof"`
}

type retrieveResponse struct {
	Limbs          [][]byte `json:"limbs"`
	RecipientIDLen int      `json:"recipient_id_len"`
	KeyShare       []byte   `json:"key_share"`
	Payload        []byte   `json:"payload"`
	Annotation     string   `json:"annotation,omitempty"`
	Commitment     string   `json:"commitment"`
}
