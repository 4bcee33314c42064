// Package travel defines the domain model for the destination-discovery
// workflow: travel demands, user preferences and inspirations, candidate
// trip routes, and the collaborator contracts the orchestrator consumes.
package travel

// TravelDemand captures what a user wants from a trip: where they must
// go, for how long, with whom, and on what budget.
type TravelDemand struct {
	MustGoDestinations []string `json:"mustGoDestinations"`
	Days               int      `json:"days"`
	Passenger          int      `json:"passenger"`
	PassengerType      string   `json:"passengerType"`
	Budgets            string   `json:"budgets"`
	SessionID          string   `json:"sessionId,omitempty"`
}

// PersonalPreferences holds the like/hate tag lists fetched from the
// Memory collaborator. Hates drive route filtering; Likes are echoed
// back to the caller for transparency.
type PersonalPreferences struct {
	Likes []string `json:"likes"`
	Hates []string `json:"hates"`
}

// RecentFocus is a destination the user has recently shown interest in,
// with lower Priority values meaning stronger interest.
type RecentFocus struct {
	Priority    int    `json:"priority"`
	Destination string `json:"destination"`
}

// LastVisit records one past trip: its date and the locations visited.
type LastVisit struct {
	Date      string   `json:"date"`
	Locations []string `json:"locations"`
}

// Inspirations aggregates the signals the AI suggestion service uses to
// guess a destination for the user.
type Inspirations struct {
	RecentFocus     []RecentFocus `json:"recentFocus,omitempty"`
	Last5YearVisits []LastVisit   `json:"last5YearVisits,omitempty"`
	TravelStyle     []string      `json:"travelStyle,omitempty"`
	Age             int           `json:"age"`
}

// TripRoute is a candidate itinerary produced by the Knowledge
// collaborator. MatchScore is a precomputed relevance value in [0,1].
type TripRoute struct {
	RouteID         string   `json:"routeId"`
	Destinations    []string `json:"destinations"`
	RecommendedDays int      `json:"recommendedDays"`
	EstimatedBudget string   `json:"estimatedBudget"`
	Highlights      []string `json:"highlights"`
	MatchScore      float64  `json:"matchScore"`
}

// DestinationSuggestion is one AI-proposed destination with a free-text
// reason and a confidence score in [0,1].
type DestinationSuggestion struct {
	Destination string  `json:"destination"`
	Reason      string  `json:"reason"`
	Confidence  float64 `json:"confidence"`
}

// GuessMeResult is the outcome of a successful AI suggestion call. The
// contract guarantees Suggestions is never empty.
type GuessMeResult struct {
	SessionID   string                  `json:"sessionId"`
	Suggestions []DestinationSuggestion `json:"suggestions"`
	Message     string                  `json:"message"`
}

// Route-search result statuses.
const (
	StatusSuccess  = "success"
	StatusNoRoutes = "no_routes_found"
)

// TripRoutesResult is the outcome of a route search. A legitimate empty
// outcome is not an error: Routes is empty, Status is StatusNoRoutes and
// Criteria echoes the search criteria that produced no matches.
type TripRoutesResult struct {
	SessionID          string               `json:"sessionId,omitempty"`
	Routes             []TripRoute          `json:"routes"`
	AppliedPreferences *PersonalPreferences `json:"appliedPreferences,omitempty"`
	Status             string               `json:"status"`
	Criteria           string               `json:"criteria,omitempty"`
}
