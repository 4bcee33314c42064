// Package memory implements the user-memory collaborator. The current
// implementation serves configurable mock data so the workflow can run
// end to end without the real memory backend; the interface it satisfies
// is the one a real client would implement.
package memory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkfare/tripscale/travel"
)

// notFoundUserID triggers the unknown-user path, keeping the failure
// branch testable end to end.
const notFoundUserID = "nonexistent"

// UserData is the configurable profile served for every known user.
type UserData struct {
	RecentFocusDestinations []string
	TravelStyles            []string
	Likes                   []string
	Hates                   []string
	Age                     int
}

// DefaultUserData returns the built-in mock profile.
func DefaultUserData() UserData {
	return UserData{
		RecentFocusDestinations: []string{"Japan", "Europe", "Southeast Asia"},
		TravelStyles:            []string{"Cultural", "Adventure", "Relaxation", "Food & Drink"},
		Likes: []string{
			"Museums and galleries",
			"Local cuisine",
			"Nature and hiking",
			"Photography",
			"Historical sites",
			"Local markets",
			"Beach activities",
		},
		Hates: []string{
			"Crowded tourist traps",
			"Extreme sports",
			"Long flights over 12 hours",
			"Very expensive restaurants",
			"Rainy weather destinations",
		},
		Age: 28,
	}
}

// Service implements travel.MemoryService.
type Service struct {
	data   UserData
	logger *slog.Logger
}

var _ travel.MemoryService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service serving the given user data.
func New(data UserData, opts ...Option) *Service {
	s := &Service{data: data}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// GetInspirations returns the signals the AI suggestion service feeds
// on: recent focus destinations (priority follows list order), past
// visits, travel styles and age.
func (s *Service) GetInspirations(_ context.Context, userID string) (travel.Inspirations, error) {
	if err := validUserID(userID); err != nil {
		return travel.Inspirations{}, err
	}

	focus := make([]travel.RecentFocus, len(s.data.RecentFocusDestinations))
	for i, dest := range s.data.RecentFocusDestinations {
		focus[i] = travel.RecentFocus{Priority: i + 1, Destination: dest}
	}

	return travel.Inspirations{
		RecentFocus: focus,
		Last5YearVisits: []travel.LastVisit{
			{Date: "2023-06-15", Locations: []string{"Bangkok", "Phuket", "Chiang Mai"}},
			{Date: "2022-12-20", Locations: []string{"London", "Edinburgh", "Dublin"}},
			{Date: "2022-08-10", Locations: []string{"Paris", "Lyon", "Nice"}},
		},
		TravelStyle: s.data.TravelStyles,
		Age:         s.data.Age,
	}, nil
}

// GetPersonalPreferences returns the user's like and hate tag lists.
func (s *Service) GetPersonalPreferences(_ context.Context, userID string) (travel.PersonalPreferences, error) {
	if err := validUserID(userID); err != nil {
		return travel.PersonalPreferences{}, err
	}
	return travel.PersonalPreferences{
		Likes: s.data.Likes,
		Hates: s.data.Hates,
	}, nil
}

// UpdateUserHistory records a travel demand against the user's history.
// The mock backend only logs it.
func (s *Service) UpdateUserHistory(_ context.Context, userID string, demand travel.TravelDemand) error {
	if err := validUserID(userID); err != nil {
		return err
	}
	if len(demand.MustGoDestinations) == 0 {
		return &travel.ValidationError{Msg: "travel demand has no destinations"}
	}

	s.logger.Debug("recorded travel demand",
		slog.String("user_id", userID),
		slog.Any("destinations", demand.MustGoDestinations),
		slog.Int("days", demand.Days),
		slog.Int("passengers", demand.Passenger),
		slog.String("budget", demand.Budgets))
	return nil
}

// Healthy reports whether the memory backend is reachable.
func (s *Service) Healthy(context.Context) bool {
	return true
}

func validUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &travel.ValidationError{Msg: "user ID cannot be empty"}
	}
	if userID == notFoundUserID {
		return &travel.UserNotFoundError{UserID: userID}
	}
	return nil
}
