// Package knowledge implements the trip-knowledge collaborator: it
// matches candidate routes against a travel demand and filters out
// routes that clash with the user's disliked tags.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkfare/tripscale/internal/util"
	"github.com/pkfare/tripscale/travel"
)

// dayFlexibility is how many days over the requested duration a route
// may recommend and still qualify.
const dayFlexibility = 2

// unavailableSentinel simulates a downstream outage when present in the
// destination list, so failure paths stay testable end to end.
const unavailableSentinel = "UNAVAILABLE"

// Service implements travel.KnowledgeService over an in-process route
// catalog. The catalog stands in for a real knowledge-base backend; the
// matching and filtering behavior is what a real backend would be
// expected to honor.
type Service struct {
	catalog []travel.TripRoute
	logger  *slog.Logger
}

var _ travel.KnowledgeService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithCatalog replaces the built-in route catalog.
func WithCatalog(routes []travel.TripRoute) Option {
	return func(s *Service) {
		s.catalog = routes
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service with the default catalog.
func New(opts ...Option) *Service {
	s := &Service{catalog: defaultCatalog()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// FindRoutes returns the catalog routes compatible with the demand,
// minus any route the preferences' hate list rules out. The result
// preserves catalog order; match scores are precomputed upstream and are
// not re-ranked here. An empty outcome after filtering is reported as a
// travel.NoRoutesError carrying the search criteria.
func (s *Service) FindRoutes(_ context.Context, demand travel.TravelDemand, prefs *travel.PersonalPreferences) ([]travel.TripRoute, error) {
	if len(demand.MustGoDestinations) == 0 {
		return nil, &travel.ValidationError{Msg: "must-go destinations cannot be empty"}
	}
	if demand.Days <= 0 {
		return nil, &travel.ValidationError{Msg: "days must be a positive number"}
	}

	for _, dest := range demand.MustGoDestinations {
		if dest == unavailableSentinel {
			return nil, &travel.UnavailableError{
				Service: "trip-knowledge",
				Err:     errors.New("service temporarily unavailable"),
			}
		}
	}

	byDays := make([]travel.TripRoute, 0, len(s.catalog))
	for _, route := range s.catalog {
		if route.RecommendedDays <= demand.Days+dayFlexibility {
			byDays = append(byDays, route)
		}
	}

	matched := filterByPreferences(byDays, prefs)
	if len(matched) == 0 {
		return nil, &travel.NoRoutesError{Criteria: criteria(demand)}
	}

	s.logger.Debug("matched routes",
		slog.Int("candidates", len(s.catalog)),
		slog.Int("matched", len(matched)),
		slog.Int("days", demand.Days))
	return matched, nil
}

// Healthy reports whether the knowledge backend is reachable. The
// in-process catalog always is.
func (s *Service) Healthy(context.Context) bool {
	return true
}

// filterByPreferences drops routes whose highlights contain a
// case-insensitive substring match against any hated tag. Nil
// preferences or an empty hate list pass every route through.
func filterByPreferences(routes []travel.TripRoute, prefs *travel.PersonalPreferences) []travel.TripRoute {
	if prefs == nil || len(prefs.Hates) == 0 {
		return routes
	}

	folded := make([]string, len(prefs.Hates))
	for i, hate := range prefs.Hates {
		folded[i] = util.Fold(hate)
	}

	kept := routes[:0:0]
	for _, route := range routes {
		if !hasHatedHighlight(route, folded) {
			kept = append(kept, route)
		}
	}
	return kept
}

func hasHatedHighlight(route travel.TripRoute, foldedHates []string) bool {
	for _, highlight := range route.Highlights {
		h := util.Fold(highlight)
		for _, hate := range foldedHates {
			if strings.Contains(h, hate) {
				return true
			}
		}
	}
	return false
}

func criteria(demand travel.TravelDemand) string {
	return fmt.Sprintf("destinations: %v, days: %d", demand.MustGoDestinations, demand.Days)
}
