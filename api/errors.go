package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/pkfare/tripscale/session"
	"github.com/pkfare/tripscale/travel"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func mapError(w http.ResponseWriter, err error) {
	var validation *travel.ValidationError
	var userNotFound *travel.UserNotFoundError
	var limited *travel.RateLimitError
	var unavailable *travel.UnavailableError

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &userNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.Itoa(limited.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:      err.Error(),
			RetryAfter: limited.RetryAfter,
		})
	case errors.As(err, &unavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
