// Package engine hosts the authoritative protocol state. It serializes
// submitted transactions, resolves their impure inputs (wall-clock time and
// external proof verdicts), journals them, and only then applies them to the
// in-memory state. Restart recovery is a straight replay of the journal.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/confidential"
	"github.com/dmitrijs2005/heirloom/internal/event"
	"github.com/dmitrijs2005/heirloom/internal/logging"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/dmitrijs2005/heirloom/internal/server/models"
	"github.com/dmitrijs2005/heirloom/internal/server/repositories/journal"
	"github.com/dmitrijs2005/heirloom/internal/verifier"
)

// ErrVerifierNotConfigured means a delivery proof arrived but no verifier is
// wired in. Proofs fail closed in that case.
var ErrVerifierNotConfigured = errors.New("no proof verifier configured")

// Engine owns the protocol state. All mutating calls funnel through submit,
// which holds the mutex across journal append and state apply, giving
// transactions their total order.
type Engine struct {
	mu       sync.Mutex
	state    *protocol.State
	journal  journal.Repository
	vault    confidential.Store
	verifier verifier.Verifier
	bus      *event.EventBus
	logger   logging.Logger
	now      func() time.Time
}

func New(j journal.Repository, vault confidential.Store, v verifier.Verifier, bus *event.EventBus, logger logging.Logger, trustedAuthKeys []protocol.Commitment) *Engine {
	return &Engine{
		state:    protocol.NewState(trustedAuthKeys),
		journal:  j,
		vault:    vault,
		verifier: v,
		bus:      bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Replay rebuilds the state from the journal. Rejected transactions were
// journaled too and replay deterministically as rejections. Grants are
// re-executed; the store keeps them idempotent.
func (e *Engine) Replay(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.journal.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("loading journal: %w", err)
	}
	for _, rec := range records {
		var tx protocol.Tx
		if err := json.Unmarshal(rec.Body, &tx); err != nil {
			return fmt.Errorf("corrupt journal record seq %d: %w", rec.Seq, err)
		}
		res, err := e.state.Apply(tx)
		if err != nil {
			continue
		}
		for _, g := range res.Grants {
			if err := e.vault.Grant(ctx, g.Handle, g.Grantee); err != nil {
				return fmt.Errorf("replaying grant for seq %d: %w", tx.Seq, err)
			}
		}
	}
	e.logger.Info(ctx, "journal replayed", "transactions", len(records), "last_seq", e.state.LastSeq())
	return nil
}

func (e *Engine) submit(ctx context.Context, op protocol.Op, caller string, params any) (*protocol.Result, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	tx := protocol.Tx{
		Seq:    e.state.LastSeq() + 1,
		Time:   e.now(),
		Caller: caller,
		Op:     op,
		Params: raw,
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}
	if err := e.journal.Append(ctx, &models.JournalRecord{Seq: tx.Seq, Body: body}); err != nil {
		return nil, fmt.Errorf("journaling transaction: %w", err)
	}

	res, err := e.state.Apply(tx)
	if err != nil {
		// The rejection is journaled and will replay as a rejection.
		return nil, err
	}

	for _, g := range res.Grants {
		if err := e.vault.Grant(ctx, g.Handle, g.Grantee); err != nil {
			// The grant is durable in the journal; replay will retry it.
			e.logger.Error(ctx, "grant failed", "handle", g.Handle, "grantee", g.Grantee, "err", err)
		}
	}
	if e.bus != nil {
		for _, ev := range res.Events {
			e.bus.Publish(event.EventType(ev.Type), event.NewEvent(event.EventType(ev.Type), ev.Data))
		}
	}
	return res, nil
}

// --- account operations ---

func (e *Engine) Register(ctx context.Context, caller, name string, checkInPeriod, gracePeriod time.Duration) error {
	_, err := e.submit(ctx, protocol.OpRegister, caller, protocol.RegisterParams{
		Name:          name,
		CheckInPeriod: checkInPeriod,
		GracePeriod:   gracePeriod,
	})
	return err
}

func (e *Engine) SetName(ctx context.Context, caller, name string) error {
	_, err := e.submit(ctx, protocol.OpSetName, caller, protocol.SetNameParams{Name: name})
	return err
}

func (e *Engine) SetPeriods(ctx context.Context, caller string, checkInPeriod, gracePeriod time.Duration) error {
	_, err := e.submit(ctx, protocol.OpSetPeriods, caller, protocol.SetPeriodsParams{
		CheckInPeriod: checkInPeriod,
		GracePeriod:   gracePeriod,
	})
	return err
}

func (e *Engine) Deposit(ctx context.Context, caller string, amount uint64) error {
	_, err := e.submit(ctx, protocol.OpDeposit, caller, protocol.DepositParams{Amount: amount})
	return err
}

func (e *Engine) Ping(ctx context.Context, caller string) error {
	_, err := e.submit(ctx, protocol.OpPing, caller, struct{}{})
	return err
}

func (e *Engine) MarkDeceased(ctx context.Context, caller, account string) error {
	_, err := e.submit(ctx, protocol.OpMarkDeceased, caller, protocol.MarkDeceasedParams{Account: account})
	return err
}

// --- council operations ---

func (e *Engine) AddCouncilMember(ctx context.Context, caller, member string) error {
	_, err := e.submit(ctx, protocol.OpAddCouncilMember, caller, protocol.CouncilMemberParams{Member: member})
	return err
}

func (e *Engine) RemoveCouncilMember(ctx context.Context, caller, member string) error {
	_, err := e.submit(ctx, protocol.OpRemoveCouncilMember, caller, protocol.CouncilMemberParams{Member: member})
	return err
}

func (e *Engine) VoteOnStatus(ctx context.Context, caller, account string, alive bool) error {
	_, err := e.submit(ctx, protocol.OpVoteOnStatus, caller, protocol.VoteParams{Account: account, Alive: alive})
	return err
}

// --- message operations ---

// MessageContent is the client-side message submission: limb and key-share
// ciphertexts still in the clear wire form, before ingestion into the
// confidential store.
type MessageContent struct {
	Limbs          [][]byte
	RecipientIDLen int
	KeyShare       []byte
	Payload        []byte
	Annotation     string
}

// ingestContent moves the confidential parts of a submission into the vault
// and returns journal-ready params referencing them by handle. Ingestion
// happens before journaling; if the transaction is later rejected the stored
// values are orphaned but inert.
func (e *Engine) ingestContent(ctx context.Context, caller string, content MessageContent) (protocol.MessageParams, error) {
	commitment := protocol.ComputeCommitment(content.Limbs, content.RecipientIDLen, content.KeyShare, content.Payload, content.Annotation)

	limbs := make([]protocol.Handle, 0, len(content.Limbs))
	for _, limb := range content.Limbs {
		h, err := e.vault.Ingest(ctx, caller, limb)
		if err != nil {
			return protocol.MessageParams{}, fmt.Errorf("ingesting limb: %w", err)
		}
		limbs = append(limbs, h)
	}
	keyShare, err := e.vault.Ingest(ctx, caller, content.KeyShare)
	if err != nil {
		return protocol.MessageParams{}, fmt.Errorf("ingesting key share: %w", err)
	}

	return protocol.MessageParams{
		Limbs:          limbs,
		RecipientIDLen: content.RecipientIDLen,
		KeyShare:       keyShare,
		Payload:        content.Payload,
		Annotation:     content.Annotation,
		Commitment:     commitment,
	}, nil
}

func messageIndex(res *protocol.Result) int {
	for _, ev := range res.Events {
		if data, ok := ev.Data.(protocol.MessageEventData); ok {
			return data.Index
		}
	}
	return -1
}

// AddMessage stores a message and returns its index.
func (e *Engine) AddMessage(ctx context.Context, caller string, content MessageContent) (int, error) {
	params, err := e.ingestContent(ctx, caller, content)
	if err != nil {
		return 0, err
	}
	res, err := e.submit(ctx, protocol.OpAddMessage, caller, protocol.AddMessageParams{MessageParams: params})
	if err != nil {
		return 0, err
	}
	return messageIndex(res), nil
}

// AddMessageWithReward stores a message with a delivery-reward escrow and
// returns its index.
func (e *Engine) AddMessageWithReward(ctx context.Context, caller string, content MessageContent, reward uint64, recipients []protocol.Commitment, contentHash protocol.Commitment) (int, error) {
	params, err := e.ingestContent(ctx, caller, content)
	if err != nil {
		return 0, err
	}
	res, err := e.submit(ctx, protocol.OpAddMessageWithReward, caller, protocol.AddMessageWithRewardParams{
		MessageParams: params,
		Reward:        reward,
		Recipients:    recipients,
		ContentHash:   contentHash,
	})
	if err != nil {
		return 0, err
	}
	return messageIndex(res), nil
}

func (e *Engine) EditMessage(ctx context.Context, caller string, index int, content MessageContent, contentHash protocol.Commitment) error {
	params, err := e.ingestContent(ctx, caller, content)
	if err != nil {
		return err
	}
	_, err = e.submit(ctx, protocol.OpEditMessage, caller, protocol.EditMessageParams{
		Index:         index,
		MessageParams: params,
		ContentHash:   contentHash,
	})
	return err
}

func (e *Engine) RevokeMessage(ctx context.Context, caller string, index int) error {
	_, err := e.submit(ctx, protocol.OpRevokeMessage, caller, protocol.RevokeMessageParams{Index: index})
	return err
}

// --- claim and reward operations ---

func (e *Engine) Claim(ctx context.Context, caller, account string, index int) error {
	_, err := e.submit(ctx, protocol.OpClaim, caller, protocol.ClaimParams{Account: account, Index: index})
	return err
}

// ProveDelivery resolves the proof to a boolean verdict through the
// configured verifier, then journals the transaction with the verdict baked
// in. Replay never re-verifies.
func (e *Engine) ProveDelivery(ctx context.Context, caller, account string, index, recipient int, recipientCommitment, authKeyCommitment, contentCommitment protocol.Commitment, proof []byte) error {
	if e.verifier == nil {
		return ErrVerifierNotConfigured
	}
	verified, err := e.verifier.Verify(ctx, proof, publicSignals(recipientCommitment, authKeyCommitment, contentCommitment))
	if err != nil {
		return fmt.Errorf("verifying proof: %w", err)
	}
	_, err = e.submit(ctx, protocol.OpProveDelivery, caller, protocol.ProveDeliveryParams{
		Account:             account,
		Index:               index,
		Recipient:           recipient,
		RecipientCommitment: recipientCommitment,
		AuthKeyCommitment:   authKeyCommitment,
		ContentCommitment:   contentCommitment,
		Verified:            verified,
	})
	return err
}

// publicSignals is the canonical proof binding: the three commitments
// concatenated in fixed order.
func publicSignals(recipient, authKey, content protocol.Commitment) []byte {
	signals := make([]byte, 0, 96)
	signals = append(signals, recipient[:]...)
	signals = append(signals, authKey[:]...)
	signals = append(signals, content[:]...)
	return signals
}

func (e *Engine) ClaimReward(ctx context.Context, caller, account string, index int) error {
	_, err := e.submit(ctx, protocol.OpClaimReward, caller, protocol.ClaimRewardParams{Account: account, Index: index})
	return err
}

// --- reads ---

func (e *Engine) Status(_ context.Context, address string) (protocol.Status, time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.StatusOf(address, e.now())
}

func (e *Engine) Account(_ context.Context, address string) (*protocol.AccountInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GetAccount(address)
}

func (e *Engine) Balance(_ context.Context, address string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Balance(address)
}

func (e *Engine) Council(_ context.Context, address string) ([]protocol.CouncilMember, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CouncilOf(address)
}

func (e *Engine) AccountsServedBy(_ context.Context, member string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.AccountsServedBy(member)
}

func (e *Engine) VoteTally(_ context.Context, address string) (*protocol.Tally, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.VoteTally(address)
}

func (e *Engine) Message(_ context.Context, address string, index int) (*protocol.MessageInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GetMessage(address, index)
}

func (e *Engine) ProofBitmap(_ context.Context, address string, index int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.ProofBitmap(address, index)
}

// RetrievedMessage is a message with its confidential parts opened for an
// authorized reader.
type RetrievedMessage struct {
	Limbs          [][]byte
	RecipientIDLen int
	KeyShare       []byte
	Payload        []byte
	Annotation     string
	Commitment     protocol.Commitment
}

// Retrieve returns the message content, opening the limb and key-share
// ciphertexts on behalf of the caller. The access policy lives in the state
// (owner always, claimant after claim); the vault enforces it a second time
// through grants.
func (e *Engine) Retrieve(ctx context.Context, caller, owner string, index int) (*RetrievedMessage, error) {
	e.mu.Lock()
	res, err := e.state.Retrieve(caller, owner, index, e.now())
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	limbs := make([][]byte, 0, len(res.Limbs))
	for _, h := range res.Limbs {
		limb, err := e.vault.Open(ctx, h, caller)
		if err != nil {
			return nil, fmt.Errorf("opening limb: %w", err)
		}
		limbs = append(limbs, limb)
	}
	keyShare, err := e.vault.Open(ctx, res.KeyShare, caller)
	if err != nil {
		return nil, fmt.Errorf("opening key share: %w", err)
	}

	return &RetrievedMessage{
		Limbs:          limbs,
		RecipientIDLen: res.RecipientIDLen,
		KeyShare:       keyShare,
		Payload:        res.Payload,
		Annotation:     res.Annotation,
		Commitment:     res.Commitment,
	}, nil
}
