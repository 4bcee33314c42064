package travel

import "fmt"

// ValidationError reports input that is malformed or out of range. It is
// never retried and maps to a 400 at the HTTP boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UserNotFoundError reports an unknown user identifier.
type UserNotFoundError struct {
	UserID string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// RateLimitError reports that a per-service, per-user ceiling was hit.
// RetryAfter is the whole seconds until the window resets, always
// positive, suitable for a Retry-After header.
type RateLimitError struct {
	Service    string
	UserID     string
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for service %q and user %q; retry after %d seconds",
		e.Service, e.UserID, e.RetryAfter)
}

// UnavailableError reports that a downstream collaborator failed: either
// a terminal client-class error, or retries were exhausted. Err carries
// the last underlying failure.
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s unavailable: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("service %s unavailable", e.Service)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// NoRoutesError reports a legitimate empty route-search outcome, not a
// system failure. Criteria carries the original search criteria so the
// caller can present or adjust them.
type NoRoutesError struct {
	Criteria string
}

func (e *NoRoutesError) Error() string {
	return fmt.Sprintf("no suitable routes found for criteria: %s", e.Criteria)
}
