package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkfare/tripscale/travel"
)

func TestGetInspirations(t *testing.T) {
	s := New(DefaultUserData())

	insp, err := s.GetInspirations(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, insp.RecentFocus, 3)
	assert.Equal(t, 1, insp.RecentFocus[0].Priority)
	assert.Equal(t, "Japan", insp.RecentFocus[0].Destination)
	assert.Equal(t, 3, insp.RecentFocus[2].Priority)

	assert.Len(t, insp.Last5YearVisits, 3)
	assert.Equal(t, 28, insp.Age)
	assert.NotEmpty(t, insp.TravelStyle)
}

func TestGetPersonalPreferences(t *testing.T) {
	s := New(UserData{Likes: []string{"Local cuisine"}, Hates: []string{"Extreme sports"}, Age: 30})

	prefs, err := s.GetPersonalPreferences(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Local cuisine"}, prefs.Likes)
	assert.Equal(t, []string{"Extreme sports"}, prefs.Hates)
}

func TestUnknownUser(t *testing.T) {
	s := New(DefaultUserData())
	ctx := context.Background()

	var nfErr *travel.UserNotFoundError

	_, err := s.GetInspirations(ctx, "nonexistent")
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "nonexistent", nfErr.UserID)

	_, err = s.GetPersonalPreferences(ctx, "nonexistent")
	assert.ErrorAs(t, err, &nfErr)

	err = s.UpdateUserHistory(ctx, "nonexistent", travel.TravelDemand{
		MustGoDestinations: []string{"Tokyo"}, Days: 7,
	})
	assert.ErrorAs(t, err, &nfErr)
}

func TestEmptyUserID(t *testing.T) {
	s := New(DefaultUserData())

	var vErr *travel.ValidationError
	_, err := s.GetInspirations(context.Background(), "  ")
	assert.ErrorAs(t, err, &vErr)
}

func TestUpdateUserHistory(t *testing.T) {
	s := New(DefaultUserData())
	ctx := context.Background()

	err := s.UpdateUserHistory(ctx, "user-1", travel.TravelDemand{
		MustGoDestinations: []string{"Tokyo", "Kyoto"},
		Days:               7,
		Passenger:          2,
		Budgets:            "Medium",
	})
	assert.NoError(t, err)

	var vErr *travel.ValidationError
	err = s.UpdateUserHistory(ctx, "user-1", travel.TravelDemand{})
	assert.ErrorAs(t, err, &vErr, "a demand without destinations is invalid")
}

func TestHealthy(t *testing.T) {
	assert.True(t, New(DefaultUserData()).Healthy(context.Background()))
}
