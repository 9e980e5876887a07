package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nearby/internal/domain/entity"
	domainerrors "nearby/internal/domain/errors"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

func TestSearchService_SortsByDistance(t *testing.T) {
	origin := entity.NewCoordinate(0, 0)
	searcher := new(mockPlaceSearcher)
	searcher.On("SearchPOI", mock.Anything, service.POIQuery{
		Proximity: origin,
		Text:      "cafe",
		Limit:     18,
	}).Return([]service.GeocodedFeature{
		{ID: "far", Name: "Far", Address: "3 Far Rd", Center: entity.NewCoordinate(0, 0.02)},
		{ID: "tie-a", Name: "Tie A", Center: entity.NewCoordinate(0, 0.01)},
		{ID: "near", Name: "Near", Center: entity.NewCoordinate(0, 0.001)},
		{ID: "tie-b", Name: "Tie B", Center: entity.NewCoordinate(0, -0.01)},
	}, nil).Once()

	indicator := &recordingIndicator{}
	svc := NewSearchService(searcher, newTestConfig(), newDiscardLogger())

	places, err := svc.SearchNearbyPlaces(context.Background(), indicator, &origin, "cafe", 18)
	require.NoError(t, err)
	require.Len(t, places, 4)

	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"near", "tie-a", "tie-b", "far"}, ids)
	assert.Equal(t, 111, places[0].DistanceMeters)
	assert.Equal(t, "3 Far Rd", places[3].Address)
	assert.Equal(t, []bool{true, false}, indicator.calls)
}

func TestSearchService_Defaults(t *testing.T) {
	origin := entity.NewCoordinate(1, 1)
	searcher := new(mockPlaceSearcher)
	searcher.On("SearchPOI", mock.Anything, mock.MatchedBy(func(q service.POIQuery) bool {
		return q.Text == "restaurant" && q.Limit == 12
	})).Return([]service.GeocodedFeature{}, nil).Once()

	svc := NewSearchService(searcher, newTestConfig(), newDiscardLogger())
	places, err := svc.SearchNearbyPlaces(context.Background(), nil, &origin, "", 0)
	require.NoError(t, err)
	assert.Empty(t, places)
	searcher.AssertExpectations(t)
}

func TestSearchService_NoCoordinates(t *testing.T) {
	searcher := new(mockPlaceSearcher)
	indicator := &recordingIndicator{}
	svc := NewSearchService(searcher, newTestConfig(), newDiscardLogger())

	_, err := svc.SearchNearbyPlaces(context.Background(), indicator, nil, "cafe", 5)
	assert.ErrorIs(t, err, domainerrors.ErrNoCoordinates)
	assert.Empty(t, indicator.calls)
	searcher.AssertNotCalled(t, "SearchPOI", mock.Anything, mock.Anything)
}

func TestSearchService_FailuresClearLoading(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"api error", domainerrors.NewPlacesAPIError(401, `{"message":"Not Authorized"}`)},
		{"network error", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := entity.NewCoordinate(1, 1)
			searcher := new(mockPlaceSearcher)
			searcher.On("SearchPOI", mock.Anything, mock.Anything).Return(nil, tt.err)

			indicator := &recordingIndicator{}
			svc := NewSearchService(searcher, newTestConfig(), newDiscardLogger())

			places, err := svc.SearchNearbyPlaces(context.Background(), indicator, &origin, "cafe", 5)
			assert.Nil(t, places)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []bool{true, false}, indicator.calls)
		})
	}
}
