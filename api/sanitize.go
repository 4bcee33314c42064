package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkfare/tripscale/internal/util"
	"github.com/pkfare/tripscale/travel"
)

const maxDestinationLen = 100

var (
	// dangerousChars are stripped from free-text inputs before
	// validation. They have no place in a destination name and are the
	// usual injection vehicles.
	dangerousChars = regexp.MustCompile(`[<>"'&;\\]`)

	destinationPattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.,()]+$`)
	identifierPattern  = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// sanitizeDestination strips dangerous characters from a destination
// name and validates what remains. NFKD normalization first, so
// full-width look-alikes of the stripped characters cannot slip
// through.
func sanitizeDestination(raw string) (string, error) {
	cleaned := strings.TrimSpace(dangerousChars.ReplaceAllString(util.Normalize(raw), ""))
	if cleaned == "" {
		return "", &travel.ValidationError{Msg: "destination must not be empty"}
	}
	if len(cleaned) > maxDestinationLen {
		return "", &travel.ValidationError{
			Msg: fmt.Sprintf("destination exceeds %d characters", maxDestinationLen),
		}
	}
	if !destinationPattern.MatchString(cleaned) {
		return "", &travel.ValidationError{Msg: "destination contains invalid characters"}
	}
	return cleaned, nil
}

// validateIdentifier checks an opaque user or session identifier.
// Identifiers are never rewritten; anything outside the allowed
// alphabet is rejected outright.
func validateIdentifier(kind, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", &travel.ValidationError{Msg: kind + " must not be empty"}
	}
	if !identifierPattern.MatchString(id) {
		return "", &travel.ValidationError{Msg: kind + " contains invalid characters"}
	}
	return id, nil
}
