package rest

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/heirloom/internal/server/services"
)

func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return req, false
	}
	return req, true
}

func tokenPair(pair *services.TokenPair) tokenPairResponse {
	return tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

func (s *RestServer) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[credentialsRequest](w, r)
	if !ok {
		return
	}
	if req.Address == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "address and password are required")
		return
	}
	if _, err := s.identities.Register(r.Context(), req.Address, []byte(req.Password)); err != nil {
		s.logger.Error(r.Context(), "identity registration failed", "err", err)
		writeError(w, http.StatusConflict, "could not register identity")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *RestServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[credentialsRequest](w, r)
	if !ok {
		return
	}
	pair, err := s.identities.Login(r.Context(), req.Address, []byte(req.Password))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, tokenPair(pair))
}

func (s *RestServer) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[refreshRequest](w, r)
	if !ok {
		return
	}
	pair, err := s.identities.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokenPair(pair))
}
