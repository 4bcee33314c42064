// Package workflow orchestrates the travel planning flows: it drives
// the session state machine, enforces per-user rate limits and
// coordinates the memory, suggestion and knowledge collaborators.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/pkfare/tripscale/ratelimit"
	"github.com/pkfare/tripscale/session"
	"github.com/pkfare/tripscale/travel"
)

// Service wires the collaborators behind the planning operations.
type Service struct {
	memory    travel.MemoryService
	suggest   travel.SuggestionService
	knowledge travel.KnowledgeService
	sessions  session.Store
	limits    *ratelimit.Limiter
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New assembles the workflow service.
func New(
	memory travel.MemoryService,
	suggest travel.SuggestionService,
	knowledge travel.KnowledgeService,
	sessions session.Store,
	limits *ratelimit.Limiter,
	opts ...Option,
) *Service {
	s := &Service{
		memory:    memory,
		suggest:   suggest,
		knowledge: knowledge,
		sessions:  sessions,
		limits:    limits,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// TravelDetailsRequest carries the trip parameters collected after a
// destination has been confirmed.
type TravelDetailsRequest struct {
	Days          int    `json:"days"`
	Passenger     int    `json:"passenger"`
	PassengerType string `json:"passengerType"`
	Budgets       string `json:"budgets"`
}

// ConfirmationResult reports the outcome of a destination
// confirmation.
type ConfirmationResult struct {
	SessionID           string         `json:"sessionId"`
	Status              session.Status `json:"status"`
	SelectedDestination string         `json:"selectedDestination,omitempty"`
	Message             string         `json:"message"`
}

// HealthStatus reports per-collaborator liveness.
type HealthStatus struct {
	Memory    bool   `json:"memory"`
	Dify      bool   `json:"dify"`
	Knowledge bool   `json:"tripKnowledge"`
	Overall   string `json:"overall"`
}

// ProcessDirectInput runs the short planning path: the user already
// knows where they want to go, so the flow skips suggestion and lands
// directly on found routes. A new session is created only when routes
// are stored; a no-routes outcome returns a success-shaped result
// without one.
func (s *Service) ProcessDirectInput(ctx context.Context, userID string, demand travel.TravelDemand) (travel.TripRoutesResult, error) {
	if err := s.checkLimits(userID, ratelimit.ServiceMemory, ratelimit.ServiceKnowledge); err != nil {
		return travel.TripRoutesResult{}, err
	}

	prefs, err := s.memory.GetPersonalPreferences(ctx, userID)
	if err != nil {
		return travel.TripRoutesResult{}, err
	}

	routes, err := s.knowledge.FindRoutes(ctx, demand, &prefs)
	if err != nil {
		var noRoutes *travel.NoRoutesError
		if errors.As(err, &noRoutes) {
			return travel.TripRoutesResult{
				Status:   travel.StatusNoRoutes,
				Criteria: noRoutes.Criteria,
			}, nil
		}
		return travel.TripRoutesResult{}, err
	}

	data := session.New(session.NewID(), userID)
	data.Status = session.StatusRoutesFound
	demand.SessionID = data.SessionID
	data.TravelDemand = &demand
	data.PersonalPreferences = &prefs
	data.TripRoutes = routes
	if err := s.sessions.Create(ctx, data); err != nil {
		return travel.TripRoutesResult{}, err
	}

	s.recordHistory(ctx, userID, demand)
	s.logger.Info("direct input planned",
		slog.String("session_id", data.SessionID),
		slog.String("user_id", userID),
		slog.Int("routes", len(routes)))

	return travel.TripRoutesResult{
		SessionID:          data.SessionID,
		Routes:             routes,
		AppliedPreferences: &prefs,
		Status:             travel.StatusSuccess,
	}, nil
}

// InitiateGuessMe starts the guided path: the AI collaborator proposes
// destinations from the user's history and a fresh session is created
// to track the conversation.
func (s *Service) InitiateGuessMe(ctx context.Context, userID string) (travel.GuessMeResult, error) {
	if err := s.checkLimits(userID, ratelimit.ServiceMemory, ratelimit.ServiceDify); err != nil {
		return travel.GuessMeResult{}, err
	}

	inspirations, err := s.memory.GetInspirations(ctx, userID)
	if err != nil {
		return travel.GuessMeResult{}, err
	}

	result, err := s.suggest.GuessDestination(ctx, inspirations)
	if err != nil {
		return travel.GuessMeResult{}, err
	}

	if err := s.sessions.Create(ctx, session.New(result.SessionID, userID)); err != nil {
		return travel.GuessMeResult{}, err
	}

	s.logger.Info("guess-me initiated",
		slog.String("session_id", result.SessionID),
		slog.String("user_id", userID),
		slog.Int("suggestions", len(result.Suggestions)))

	return result, nil
}

// ConfirmDestination records the user's decision on a suggested
// destination. Accepting moves the session forward; rejecting leaves it
// where it is so another suggestion can be confirmed later.
func (s *Service) ConfirmDestination(ctx context.Context, sessionID, destination string, confirmed bool) (ConfirmationResult, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return ConfirmationResult{}, &travel.ValidationError{Msg: "destination must not be empty"}
	}

	if !confirmed {
		data, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			return ConfirmationResult{}, err
		}
		if data.Status != session.StatusInitiated {
			return ConfirmationResult{}, session.ErrInvalidState
		}
		return ConfirmationResult{
			SessionID: sessionID,
			Status:    data.Status,
			Message:   "Destination rejected, please pick another suggestion",
		}, nil
	}

	data, err := s.sessions.UpdateIfStatus(ctx, sessionID, session.StatusInitiated, func(d *session.Data) {
		d.Status = session.StatusDestinationConfirmed
		d.SelectedDestination = destination
	})
	if err != nil {
		return ConfirmationResult{}, err
	}

	s.logger.Info("destination confirmed",
		slog.String("session_id", sessionID),
		slog.String("destination", destination))

	return ConfirmationResult{
		SessionID:           sessionID,
		Status:              data.Status,
		SelectedDestination: data.SelectedDestination,
		Message:             "Destination confirmed, please provide your travel details",
	}, nil
}

// CollectTravelDetails completes the guided path: it takes the trip
// parameters, searches routes for the confirmed destination and, when
// routes are found, advances the session in a single atomic step. When
// nothing matches or a collaborator fails, the session stays at
// DestinationConfirmed so the user can adjust and retry.
func (s *Service) CollectTravelDetails(ctx context.Context, sessionID string, details TravelDetailsRequest) (travel.TripRoutesResult, error) {
	data, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return travel.TripRoutesResult{}, err
	}
	if data.Status != session.StatusDestinationConfirmed {
		return travel.TripRoutesResult{}, session.ErrInvalidState
	}

	if err := s.checkLimits(data.UserID, ratelimit.ServiceMemory, ratelimit.ServiceKnowledge); err != nil {
		return travel.TripRoutesResult{}, err
	}

	prefs, err := s.memory.GetPersonalPreferences(ctx, data.UserID)
	if err != nil {
		return travel.TripRoutesResult{}, err
	}

	demand := travel.TravelDemand{
		MustGoDestinations: []string{data.SelectedDestination},
		Days:               details.Days,
		Passenger:          details.Passenger,
		PassengerType:      details.PassengerType,
		Budgets:            details.Budgets,
		SessionID:          sessionID,
	}

	routes, err := s.knowledge.FindRoutes(ctx, demand, &prefs)
	if err != nil {
		var noRoutes *travel.NoRoutesError
		if errors.As(err, &noRoutes) {
			return travel.TripRoutesResult{
				SessionID: sessionID,
				Status:    travel.StatusNoRoutes,
				Criteria:  noRoutes.Criteria,
			}, nil
		}
		return travel.TripRoutesResult{}, err
	}

	updated, err := s.sessions.UpdateIfStatus(ctx, sessionID, session.StatusDestinationConfirmed, func(d *session.Data) {
		d.Status = session.StatusRoutesFound
		d.TravelDemand = &demand
		d.PersonalPreferences = &prefs
		d.TripRoutes = routes
	})
	if err != nil {
		return travel.TripRoutesResult{}, err
	}

	s.recordHistory(ctx, updated.UserID, demand)
	s.logger.Info("travel details collected",
		slog.String("session_id", sessionID),
		slog.String("user_id", updated.UserID),
		slog.Int("routes", len(routes)))

	return travel.TripRoutesResult{
		SessionID:          sessionID,
		Routes:             routes,
		AppliedPreferences: &prefs,
		Status:             travel.StatusSuccess,
	}, nil
}

// GetTripRoutes returns the routes already stored on a session. It
// mutates nothing but the session's last-access time and can be
// repeated freely.
func (s *Service) GetTripRoutes(ctx context.Context, sessionID string) (travel.TripRoutesResult, error) {
	data, err := s.sessions.Touch(ctx, sessionID, session.StatusRoutesFound)
	if err != nil {
		return travel.TripRoutesResult{}, err
	}

	return travel.TripRoutesResult{
		SessionID:          sessionID,
		Routes:             data.TripRoutes,
		AppliedPreferences: data.PersonalPreferences,
		Status:             travel.StatusSuccess,
	}, nil
}

// ServiceHealth probes every collaborator. Overall is "healthy" only
// when all of them respond.
func (s *Service) ServiceHealth(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Memory:    s.memory.Healthy(ctx),
		Dify:      s.suggest.Healthy(ctx),
		Knowledge: s.knowledge.Healthy(ctx),
	}
	if status.Memory && status.Dify && status.Knowledge {
		status.Overall = "healthy"
	} else {
		status.Overall = "degraded"
	}
	return status
}

// recordHistory feeds the planned demand back into the user's travel
// history. Best effort: planning has already succeeded.
func (s *Service) recordHistory(ctx context.Context, userID string, demand travel.TravelDemand) {
	if err := s.memory.UpdateUserHistory(ctx, userID, demand); err != nil {
		s.logger.Warn("user history update failed",
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}

// checkLimits consumes one token per listed service for the user,
// failing on the first exhausted window.
func (s *Service) checkLimits(userID string, services ...string) error {
	for _, service := range services {
		if s.limits.Allow(service, userID) {
			continue
		}
		retryAfter := s.limits.SecondsUntilReset(service, userID)
		s.logger.Warn("rate limit exceeded",
			slog.String("service", service),
			slog.String("user_id", userID),
			slog.Int("retry_after", retryAfter))
		return &travel.RateLimitError{
			Service:    service,
			UserID:     userID,
			RetryAfter: retryAfter,
		}
	}
	return nil
}
