package dify

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkfare/tripscale/travel"
)

const (
	structuredConfidence = 0.7
	textConfidence       = 0.6
	fallbackConfidence   = 0.5

	textReason = "AI recommendation based on your preferences"
)

// destinationChars strips everything a "City, Country" pair should not
// contain.
var destinationChars = regexp.MustCompile(`[^a-zA-Z0-9,\s]`)

type apiResponse struct {
	Answer      string          `json:"answer"`
	Suggestions []apiSuggestion `json:"suggestions"`
}

type apiSuggestion struct {
	Destination string   `json:"destination"`
	Reason      string   `json:"reason"`
	Confidence  *float64 `json:"confidence"`
}

// parseResponse extracts suggestions from a successful response body.
// It prefers the structured suggestions array, then mines the free-text
// answer for "City, Country" lines, and as a last resort returns a
// fixed pair of well-known destinations. It never fails: a malformed
// body still produces a usable result.
func parseResponse(body []byte) travel.GuessMeResult {
	var resp apiResponse
	// Tolerate garbage; the fallback chain below covers it.
	_ = json.Unmarshal(body, &resp)

	message := defaultMessage
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		message = answer
	}

	suggestions := structuredSuggestions(resp.Suggestions)
	if len(suggestions) == 0 {
		suggestions = suggestionsFromText(resp.Answer)
	}
	if len(suggestions) == 0 {
		suggestions = fallbackSuggestions()
	}

	return travel.GuessMeResult{
		Suggestions: suggestions,
		Message:     message,
	}
}

func structuredSuggestions(raw []apiSuggestion) []travel.DestinationSuggestion {
	var out []travel.DestinationSuggestion
	for _, s := range raw {
		dest := strings.TrimSpace(s.Destination)
		if dest == "" {
			continue
		}
		confidence := structuredConfidence
		if s.Confidence != nil {
			confidence = *s.Confidence
		}
		out = append(out, travel.DestinationSuggestion{
			Destination: dest,
			Reason:      s.Reason,
			Confidence:  confidence,
		})
	}
	return out
}

// suggestionsFromText scans the free-text answer line by line, keeping
// lines that look like they name a destination.
func suggestionsFromText(answer string) []travel.DestinationSuggestion {
	var out []travel.DestinationSuggestion
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, ",") && !strings.Contains(strings.ToLower(line), "suggest") {
			continue
		}
		dest := destinationFromLine(line)
		if dest == "" {
			continue
		}
		out = append(out, travel.DestinationSuggestion{
			Destination: dest,
			Reason:      textReason,
			Confidence:  textConfidence,
		})
	}
	return out
}

// destinationFromLine reduces a line to a "City, Country" pair, or ""
// when no pair can be salvaged.
func destinationFromLine(line string) string {
	parts := strings.Split(line, ",")
	if len(parts) < 2 {
		return ""
	}
	city := strings.TrimSpace(destinationChars.ReplaceAllString(parts[0], ""))
	country := strings.TrimSpace(destinationChars.ReplaceAllString(parts[1], ""))
	if city == "" || country == "" {
		return ""
	}
	return city + ", " + country
}

func fallbackSuggestions() []travel.DestinationSuggestion {
	return []travel.DestinationSuggestion{
		{
			Destination: "Paris, France",
			Reason:      "A timeless favourite for culture, cuisine and history",
			Confidence:  fallbackConfidence,
		},
		{
			Destination: "Tokyo, Japan",
			Reason:      "A vibrant mix of tradition and modern city life",
			Confidence:  fallbackConfidence,
		},
	}
}
