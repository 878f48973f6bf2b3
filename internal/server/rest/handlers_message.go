package rest

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/dmitrijs2005/heirloom/internal/server/engine"
	"github.com/gorilla/mux"
)

func messageContent(req messageContentRequest) engine.MessageContent {
	return engine.MessageContent{
		Limbs:          req.Limbs,
		RecipientIDLen: req.RecipientIDLen,
		KeyShare:       req.KeyShare,
		Payload:        req.Payload,
		Annotation:     req.Annotation,
	}
}

func pathIndex(r *http.Request) int {
	// The route pattern restricts index to digits.
	index, _ := strconv.Atoi(mux.Vars(r)["index"])
	return index
}

func parseCommitment(w http.ResponseWriter, s string) (protocol.Commitment, bool) {
	c, err := protocol.ParseCommitment(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed commitment")
		return protocol.Commitment{}, false
	}
	return c, true
}

func (s *RestServer) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[addMessageRequest](w, r)
	if !ok {
		return
	}

	var index int
	var err error
	if req.Reward == 0 && len(req.Recipients) == 0 {
		index, err = s.engine.AddMessage(r.Context(), caller(r), messageContent(req.messageContentRequest))
	} else {
		recipients := make([]protocol.Commitment, 0, len(req.Recipients))
		for _, rc := range req.Recipients {
			c, ok := parseCommitment(w, rc)
			if !ok {
				return
			}
			recipients = append(recipients, c)
		}
		contentHash, ok := parseCommitment(w, req.ContentHash)
		if !ok {
			return
		}
		index, err = s.engine.AddMessageWithReward(r.Context(), caller(r), messageContent(req.messageContentRequest), req.Reward, recipients, contentHash)
	}
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageIndexResponse{Index: index})
}

func (s *RestServer) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[editMessageRequest](w, r)
	if !ok {
		return
	}
	var contentHash protocol.Commitment
	if req.ContentHash != "" {
		var ok bool
		contentHash, ok = parseCommitment(w, req.ContentHash)
		if !ok {
			return
		}
	}
	if err := s.engine.EditMessage(r.Context(), caller(r), pathIndex(r), messageContent(req.messageContentRequest), contentHash); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleRevokeMessage(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RevokeMessage(r.Context(), caller(r), pathIndex(r)); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Message(r.Context(), mux.Vars(r)["address"], pathIndex(r))
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *RestServer) handleClaim(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Claim(r.Context(), caller(r), mux.Vars(r)["address"], pathIndex(r)); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	msg, err := s.engine.Retrieve(r.Context(), caller(r), mux.Vars(r)["address"], pathIndex(r))
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, retrieveResponse{
		Limbs:          msg.Limbs,
		RecipientIDLen: msg.RecipientIDLen,
		KeyShare:       msg.KeyShare,
		Payload:        msg.Payload,
		Annotation:     msg.Annotation,
		Commitment:     msg.Commitment.String(),
	})
}

func (s *RestServer) handleProveDelivery(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[proveDeliveryRequest](w, r)
	if !ok {
		return
	}
	recipient, ok := parseCommitment(w, req.RecipientCommitment)
	if !ok {
		return
	}
	authKey, ok := parseCommitment(w, req.AuthKeyCommitment)
	if !ok {
		return
	}
	content, ok := parseCommitment(w, req.ContentCommitment)
	if !ok {
		return
	}
	err := s.engine.ProveDelivery(r.Context(), caller(r), mux.Vars(r)["address"], pathIndex(r), req.Recipient, recipient, authKey, content, req.Proof)
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.ClaimReward(r.Context(), caller(r), mux.Vars(r)["address"], pathIndex(r)); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
