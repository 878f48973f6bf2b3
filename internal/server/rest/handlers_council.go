package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *RestServer) handleAddCouncilMember(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[councilMemberRequest](w, r)
	if !ok {
		return
	}
	if err := s.engine.AddCouncilMember(r.Context(), caller(r), req.Member); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *RestServer) handleRemoveCouncilMember(w http.ResponseWriter, r *http.Request) {
	member := mux.Vars(r)["member"]
	if err := s.engine.RemoveCouncilMember(r.Context(), caller(r), member); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleGetCouncil(w http.ResponseWriter, r *http.Request) {
	roster, err := s.engine.Council(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *RestServer) handleServing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, servingResponse{
		Accounts: s.engine.AccountsServedBy(r.Context(), caller(r)),
	})
}

func (s *RestServer) handleVote(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[voteRequest](w, r)
	if !ok {
		return
	}
	address := mux.Vars(r)["address"]
	if err := s.engine.VoteOnStatus(r.Context(), caller(r), address, req.Alive); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleGetVoteTally(w http.ResponseWriter, r *http.Request) {
	tally, err := s.engine.VoteTally(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}
