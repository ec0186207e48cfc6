package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/soundhub/internal/common"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errEmptyBody = errors.New("request body is required")

// decode reads a JSON object from the request body into dst.
func decode(r *http.Request, w http.ResponseWriter, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// decodeOrFail decodes the body and writes a 400 on failure.
func decodeOrFail(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decode(r, w, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errEmptyBody):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body is required"})
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body", Details: err.Error()})
	}
	return false
}

// writeError maps a service error onto a status code and JSON body.
// notFound is the message used for a plain common.ErrNotFound.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		ve *common.ValidationError
		ce *common.ConflictError
		rc *common.RoleConflictError
	)

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: ve.Fields})
	case errors.Is(err, common.ErrNoOp):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No fields to update"})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{Error: ce.Error()})
	case errors.As(err, &rc):
		writeJSON(w, http.StatusConflict, errorBody{Error: rc.Error()})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid email/username or password"})
	case errors.Is(err, common.ErrIncorrectPassword):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Current password is incorrect"})
	case errors.Is(err, common.ErrPlanNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Plan not found"})
	case errors.Is(err, common.ErrNoActiveSubscription):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "No active subscription to cancel"})
	case errors.Is(err, common.ErrAlreadyFollowing):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Already following this artist"})
	case errors.Is(err, common.ErrArtistNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Artist not found"})
	case errors.Is(err, common.ErrNotFollowing):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not following this artist"})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: notFound})
	default:
		h.logger.Error(r.Context(), "request failed", "error", err.Error(), "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Details: err.Error()})
	}
}
