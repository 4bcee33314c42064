package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkfare/tripscale/travel"
	"github.com/pkfare/tripscale/workflow"
)

// maxBodySize bounds request bodies. Planning requests are small; a
// large body is never legitimate.
const maxBodySize = 64 << 10 // 64 KiB

// decodeJSON reads and decodes a JSON body into T, writing a 400 and
// returning ok=false on any failure. Unknown fields are rejected so
// client typos surface instead of silently dropping data.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return v, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return v, false
	}
	return v, true
}

// DirectInput handles POST /travel/direct-input.
// Plans a trip for a user who already knows their destinations.
func (a *API) DirectInput(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[DirectInputRequest](w, r)
	if !ok {
		return
	}

	userID, err := validateIdentifier("userId", req.UserID)
	if err != nil {
		mapError(w, err)
		return
	}

	destinations := make([]string, 0, len(req.MustGoDestinations))
	for _, raw := range req.MustGoDestinations {
		dest, err := sanitizeDestination(raw)
		if err != nil {
			mapError(w, err)
			return
		}
		destinations = append(destinations, dest)
	}

	result, err := a.planner.ProcessDirectInput(r.Context(), userID, travel.TravelDemand{
		MustGoDestinations: destinations,
		Days:               req.Days,
		Passenger:          req.Passenger,
		PassengerType:      req.PassengerType,
		Budgets:            req.Budgets,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GuessMe handles POST /travel/guess-me.
// Starts the guided path: AI-suggested destinations from the user's
// history.
func (a *API) GuessMe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[GuessMeRequest](w, r)
	if !ok {
		return
	}

	userID, err := validateIdentifier("userId", req.UserID)
	if err != nil {
		mapError(w, err)
		return
	}

	result, err := a.planner.InitiateGuessMe(r.Context(), userID)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ConfirmDestination handles POST /travel/confirm-destination.
func (a *API) ConfirmDestination(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ConfirmDestinationRequest](w, r)
	if !ok {
		return
	}

	sessionID, err := validateIdentifier("sessionId", req.SessionID)
	if err != nil {
		mapError(w, err)
		return
	}
	destination, err := sanitizeDestination(req.Destination)
	if err != nil {
		mapError(w, err)
		return
	}

	result, err := a.planner.ConfirmDestination(r.Context(), sessionID, destination, req.Confirmed)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CollectDetails handles POST /travel/collect-details.
// Completes the guided path by searching routes for the confirmed
// destination.
func (a *API) CollectDetails(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[CollectDetailsRequest](w, r)
	if !ok {
		return
	}

	sessionID, err := validateIdentifier("sessionId", req.SessionID)
	if err != nil {
		mapError(w, err)
		return
	}

	result, err := a.planner.CollectTravelDetails(r.Context(), sessionID, workflow.TravelDetailsRequest{
		Days:          req.Days,
		Passenger:     req.Passenger,
		PassengerType: req.PassengerType,
		Budgets:       req.Budgets,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetTripRoutes handles GET /travel/routes/{sessionID}.
func (a *API) GetTripRoutes(w http.ResponseWriter, r *http.Request) {
	sessionID, err := validateIdentifier("sessionId", chi.URLParam(r, "sessionID"))
	if err != nil {
		mapError(w, err)
		return
	}

	result, err := a.planner.GetTripRoutes(r.Context(), sessionID)
	if err != nil {
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ServiceHealth handles GET /health/services.
// Reports per-collaborator liveness; 503 when any collaborator is down.
func (a *API) ServiceHealth(w http.ResponseWriter, r *http.Request) {
	status := a.planner.ServiceHealth(r.Context())
	code := http.StatusOK
	if status.Overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
