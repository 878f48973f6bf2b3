package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *RestServer) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[registerAccountRequest](w, r)
	if !ok {
		return
	}
	if err := s.engine.Register(r.Context(), caller(r), req.Name, req.CheckInPeriod.Duration, req.GracePeriod.Duration); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *RestServer) handlePing(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ping(r.Context(), caller(r)); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleSetName(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[setNameRequest](w, r)
	if !ok {
		return
	}
	if err := s.engine.SetName(r.Context(), caller(r), req.Name); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleSetPeriods(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[setPeriodsRequest](w, r)
	if !ok {
		return
	}
	if err := s.engine.SetPeriods(r.Context(), caller(r), req.CheckInPeriod.Duration, req.GracePeriod.Duration); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[depositRequest](w, r)
	if !ok {
		return
	}
	if err := s.engine.Deposit(r.Context(), caller(r), req.Amount); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleMarkDeceased(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	if err := s.engine.MarkDeceased(r.Context(), caller(r), address); err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *RestServer) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.Account(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *RestServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	status, remaining, err := s.engine.Status(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	resp := statusResponse{Status: status.String()}
	if remaining > 0 {
		resp.Remaining = remaining.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *RestServer) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	writeJSON(w, http.StatusOK, balanceResponse{
		Address: address,
		Balance: s.engine.Balance(r.Context(), address),
	})
}
