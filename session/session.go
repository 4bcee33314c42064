// Package session tracks one user's progress through the guided
// destination-discovery workflow. A Store holds one Data record per
// workflow instance and guarantees linearizable status transitions via
// compare-and-swap on the expected predecessor status.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pkfare/tripscale/travel"
)

// Status encodes where a session is in the workflow. A session only
// moves forward through the sequence; every mutating operation names the
// exact predecessor status it requires.
type Status string

const (
	StatusInitiated            Status = "INITIATED"
	StatusDestinationConfirmed Status = "DESTINATION_CONFIRMED"
	StatusDetailsCollected     Status = "DETAILS_COLLECTED"
	StatusRoutesFound          Status = "ROUTES_FOUND"
	StatusCompleted            Status = "COMPLETED"
	StatusExpired              Status = "EXPIRED"
)

var (
	// ErrNotFound is returned for operations against an unknown
	// session identifier.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidState is returned when a session exists but is not in
	// the status the operation requires.
	ErrInvalidState = errors.New("invalid session state for operation")
	// ErrExists is returned when creating a session whose identifier
	// is already taken.
	ErrExists = errors.New("session already exists")
)

// Data is the server-side record for one workflow instance. Which
// optional fields are populated is strictly encoded by Status.
type Data struct {
	SessionID           string                      `json:"sessionId"`
	UserID              string                      `json:"userId"`
	CreatedAt           time.Time                   `json:"createdAt"`
	LastAccessedAt      time.Time                   `json:"lastAccessedAt"`
	Status              Status                      `json:"status"`
	SelectedDestination string                      `json:"selectedDestination,omitempty"`
	TravelDemand        *travel.TravelDemand        `json:"travelDemand,omitempty"`
	PersonalPreferences *travel.PersonalPreferences `json:"personalPreferences,omitempty"`
	TripRoutes          []travel.TripRoute          `json:"tripRoutes,omitempty"`
}

// New creates a Data record in the initial status with both timestamps
// set to now.
func New(sessionID, userID string) Data {
	now := time.Now().UTC()
	return Data{
		SessionID:      sessionID,
		UserID:         userID,
		CreatedAt:      now,
		LastAccessedAt: now,
		Status:         StatusInitiated,
	}
}

// NewID generates an opaque session identifier.
func NewID() string {
	return "sess_" + uuid.NewString()
}

// Store abstracts session persistence so the orchestrator never touches
// a concrete map or database, and tests can substitute an in-memory
// fake.
//
// UpdateIfStatus is the linearization point for workflow transitions:
// for a given session, concurrent calls with the same expected status
// see exactly one winner; the rest get ErrInvalidState.
type Store interface {
	// Create stores a new session record. ErrExists if the identifier
	// is already taken.
	Create(ctx context.Context, data Data) error
	// Get returns the session, or ErrNotFound. It does not touch
	// LastAccessedAt.
	Get(ctx context.Context, id string) (Data, error)
	// UpdateIfStatus atomically checks that the session is in the
	// expected status, applies mutate, refreshes LastAccessedAt and
	// persists the result, returning the updated record. ErrNotFound
	// for unknown ids, ErrInvalidState on a status mismatch.
	UpdateIfStatus(ctx context.Context, id string, expect Status, mutate func(*Data)) (Data, error)
	// Touch is the read-path variant: it requires the expected status
	// and refreshes LastAccessedAt, changing nothing else.
	Touch(ctx context.Context, id string, expect Status) (Data, error)
}
