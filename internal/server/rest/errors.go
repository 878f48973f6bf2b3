package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/confidential"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/dmitrijs2005/heirloom/internal/server/engine"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeProtocolError maps a rejection onto an HTTP status through the
// protocol error taxonomy.
func writeProtocolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrVerifierNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, confidential.ErrNoGrant):
		writeError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, confidential.ErrUnknownHandle):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var status int
	switch protocol.KindOf(err) {
	case protocol.KindValidation:
		status = http.StatusBadRequest
	case protocol.KindPrecondition:
		status = http.StatusConflict
	case protocol.KindAuthorization:
		status = http.StatusForbidden
	case protocol.KindIntegrity:
		status = http.StatusUnprocessableEntity
	case protocol.KindResource:
		status = http.StatusPaymentRequired
	case protocol.KindNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}
	writeError(w, status, err.Error())
}
