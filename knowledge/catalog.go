package knowledge

import "github.com/pkfare/tripscale/travel"

// defaultCatalog returns the built-in candidate routes, ordered by
// descending match score as scored upstream.
func defaultCatalog() []travel.TripRoute {
	return []travel.TripRoute{
		{
			RouteID:         "JP-CULTURAL-001",
			Destinations:    []string{"Tokyo", "Kyoto", "Osaka"},
			RecommendedDays: 7,
			EstimatedBudget: "$2500-3500",
			Highlights:      []string{"Traditional temples", "Cherry blossoms", "Local cuisine", "Cultural experiences"},
			MatchScore:      0.92,
		},
		{
			RouteID:         "EU-ADVENTURE-002",
			Destinations:    []string{"Paris", "Amsterdam", "Berlin"},
			RecommendedDays: 10,
			EstimatedBudget: "$3000-4000",
			Highlights:      []string{"Museums and galleries", "Historical sites", "Local markets", "Photography"},
			MatchScore:      0.88,
		},
		{
			RouteID:         "SEA-RELAX-003",
			Destinations:    []string{"Bali", "Bangkok", "Phuket"},
			RecommendedDays: 12,
			EstimatedBudget: "$2000-3000",
			Highlights:      []string{"Beach activities", "Nature and hiking", "Local cuisine", "Relaxation"},
			MatchScore:      0.85,
		},
		{
			RouteID:         "NZ-NATURE-004",
			Destinations:    []string{"Auckland", "Queenstown", "Wellington"},
			RecommendedDays: 14,
			EstimatedBudget: "$4000-5500",
			Highlights:      []string{"Mountain views", "Adventure sports", "Nature and hiking", "Photography"},
			MatchScore:      0.80,
		},
		{
			RouteID:         "MED-CULTURE-005",
			Destinations:    []string{"Barcelona", "Rome", "Athens"},
			RecommendedDays: 9,
			EstimatedBudget: "$2800-3800",
			Highlights:      []string{"Historical sites", "Local cuisine", "Museums and galleries", "Cultural experiences"},
			MatchScore:      0.87,
		},
	}
}
