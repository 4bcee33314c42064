package travel

import "context"

// MemoryService is the user-memory collaborator: it knows a user's
// inspirations, preferences and travel history.
type MemoryService interface {
	GetInspirations(ctx context.Context, userID string) (Inspirations, error)
	GetPersonalPreferences(ctx context.Context, userID string) (PersonalPreferences, error)
	UpdateUserHistory(ctx context.Context, userID string, demand TravelDemand) error
	Healthy(ctx context.Context) bool
}

// SuggestionService is the AI collaborator that proposes destinations
// from a user's inspirations. Implementations own their retry policy; a
// returned error is final from the orchestrator's point of view.
type SuggestionService interface {
	GuessDestination(ctx context.Context, inspirations Inspirations) (GuessMeResult, error)
	Healthy(ctx context.Context) bool
}

// KnowledgeService is the trip-knowledge collaborator that matches
// candidate routes against a demand and an optional preference set.
type KnowledgeService interface {
	FindRoutes(ctx context.Context, demand TravelDemand, prefs *PersonalPreferences) ([]TripRoute, error)
	Healthy(ctx context.Context) bool
}
