package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/client/api"
	"github.com/dmitrijs2005/heirloom/internal/client/models"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
)

// padRecipientID splits the recipient identifier into the fixed number of
// fixed-size limbs the server expects, zero-padding the remainder so the
// stored shape reveals nothing about the identifier's length.
func padRecipientID(id []byte) ([][]byte, int, error) {
	if len(id) > protocol.RecipientIDLimbs*protocol.LimbSize {
		return nil, 0, fmt.Errorf("recipient identifier too long: %d bytes", len(id))
	}

	limbs := make([][]byte, protocol.RecipientIDLimbs)
	for i := range limbs {
		limb := make([]byte, protocol.LimbSize)
		start := i * protocol.LimbSize
		if start < len(id) {
			copy(limb, id[start:])
		}
		limbs[i] = limb
	}
	return limbs, len(id), nil
}

// AddMessage prompts for the message parts and stores them on the server.
// The key share and payload are expected to be prepared (encrypted) by an
// external tool and entered hex-encoded; the CLI never sees plaintexts.
func (a *App) AddMessage(ctx context.Context) error {
	recipient, err := getSimpleText(a.reader, "Enter recipient identifier", os.Stdout)
	if err != nil {
		return err
	}
	limbs, idLen, err := padRecipientID([]byte(recipient))
	if err != nil {
		return err
	}

	keyShareHex, err := getSimpleText(a.reader, "Enter key share (hex)", os.Stdout)
	if err != nil {
		return err
	}
	keyShare, err := hex.DecodeString(keyShareHex)
	if err != nil {
		return fmt.Errorf("invalid key share: %w", err)
	}

	payloadHex, err := getMultiline(a.reader, "Enter encrypted payload (hex)", os.Stdout)
	if err != nil {
		return err
	}
	payload, err := hex.DecodeString(strings.ReplaceAll(payloadHex, "\n", ""))
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	annotation, err := getSimpleText(a.reader, "Enter annotation (optional)", os.Stdout)
	if err != nil {
		return err
	}

	index, err := a.server.AddMessage(ctx, api.MessageContent{
		Limbs:          limbs,
		RecipientIDLen: idLen,
		KeyShare:       keyShare,
		Payload:        payload,
		Annotation:     annotation,
	})
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Stored as message #%d", index))
	return nil
}

// Claim claims a released message, granting this identity access to its
// content and registering it as the exclusive notifier.
func (a *App) Claim(ctx context.Context) error {
	owner, err := getSimpleText(a.reader, "Enter owner address", os.Stdout)
	if err != nil {
		return err
	}
	index, err := getInt(a.reader, "Enter message index")
	if err != nil {
		return err
	}

	if err := a.server.Claim(ctx, owner, index); err != nil {
		return err
	}
	printlnFn("Claimed.")
	return nil
}

// Retrieve fetches the content of a released message and stores a copy in
// the local cache so it stays readable offline.
func (a *App) Retrieve(ctx context.Context) error {
	owner, err := getSimpleText(a.reader, "Enter owner address", os.Stdout)
	if err != nil {
		return err
	}
	index, err := getInt(a.reader, "Enter message index")
	if err != nil {
		return err
	}

	msg, err := a.server.Retrieve(ctx, owner, index)
	if err != nil {
		return err
	}

	err = a.store.Messages.Save(ctx, &models.Message{
		Owner:       owner,
		Idx:         index,
		Annotation:  msg.Annotation,
		Payload:     msg.Payload,
		KeyShare:    msg.KeyShare,
		Commitment:  msg.Commitment,
		RetrievedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	printMessage(owner, index, msg.Annotation, msg.KeyShare, msg.Payload)
	return nil
}

// List shows the locally cached messages.
func (a *App) List(ctx context.Context) error {
	all, err := a.store.Messages.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		printlnFn("No cached messages.")
		return nil
	}
	for _, m := range all {
		printlnFn(fmt.Sprintf("%s #%d  %s  (retrieved %s)",
			m.Owner, m.Idx, m.Annotation, m.RetrievedAt.Format(time.RFC3339)))
	}
	return nil
}

// Show prints a single cached message, including its payload.
func (a *App) Show(ctx context.Context) error {
	owner, err := getSimpleText(a.reader, "Enter owner address", os.Stdout)
	if err != nil {
		return err
	}
	index, err := getInt(a.reader, "Enter message index")
	if err != nil {
		return err
	}

	m, err := a.store.Messages.Get(ctx, owner, index)
	if err != nil {
		return err
	}
	printMessage(m.Owner, m.Idx, m.Annotation, m.KeyShare, m.Payload)
	return nil
}

func printMessage(owner string, index int, annotation string, keyShare, payload []byte) {
	printlnFn(fmt.Sprintf("Message %s #%d", owner, index))
	if annotation != "" {
		printlnFn("Annotation:", annotation)
	}
	printlnFn("Key share:", hex.EncodeToString(keyShare))
	printlnFn("Payload:", hex.EncodeToString(payload))
}
