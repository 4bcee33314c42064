package api

// ErrorResponse is the uniform error body. RetryAfter is set only on
// rate-limited responses, mirroring the Retry-After header.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// DirectInputRequest is the short planning path: the user already knows
// their destinations.
type DirectInputRequest struct {
	UserID             string   `json:"userId"`
	MustGoDestinations []string `json:"mustGoDestinations"`
	Days               int      `json:"days"`
	Passenger          int      `json:"passenger"`
	PassengerType      string   `json:"passengerType"`
	Budgets            string   `json:"budgets"`
}

// GuessMeRequest starts the guided discovery path.
type GuessMeRequest struct {
	UserID string `json:"userId"`
}

// ConfirmDestinationRequest records the user's decision on a suggested
// destination.
type ConfirmDestinationRequest struct {
	SessionID   string `json:"sessionId"`
	Destination string `json:"destination"`
	Confirmed   bool   `json:"confirmed"`
}

// CollectDetailsRequest carries the trip parameters for a confirmed
// destination.
type CollectDetailsRequest struct {
	SessionID     string `json:"sessionId"`
	Days          int    `json:"days"`
	Passenger     int    `json:"passenger"`
	PassengerType string `json:"passengerType"`
	Budgets       string `json:"budgets"`
}
