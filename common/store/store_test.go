package store

import (
	"context"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func testDocument(t *testing.T) schedule.Document {
	id, err := uuid.NewV4()
	require.NoError(t, err)

	return schedule.Document{
		Flights: []schedule.RouteRecord{
			{Departure: "FRA", Arrival: "JFK", Dates: []string{"2024-01-01", "2024-01-02", "2024-03-31"}},
			{Departure: "JFK", Arrival: "FRA", Dates: []string{"2024-01-02"}},
			{Departure: "MUC", Arrival: "LHR", Dates: []string{}},
		},
		Metadata: &schedule.Metadata{
			Id:          id,
			CreatedAt:   time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC),
			Source:      "summer.xlsx",
			Rows:        4,
			SkippedRows: 1,
		},
	}
}

func assertDocument(t *testing.T, expected, actual schedule.Document) {
	t.Helper()

	assert.Equal(t, expected.Flights, actual.Flights)

	if expected.Metadata == nil {
		assert.Nil(t, actual.Metadata)
		return
	}

	require.NotNil(t, actual.Metadata)
	assert.Equal(t, expected.Metadata.Id, actual.Metadata.Id)
	assert.True(t, expected.Metadata.CreatedAt.Equal(actual.Metadata.CreatedAt), "%v != %v", expected.Metadata.CreatedAt, actual.Metadata.CreatedAt)
	assert.Equal(t, expected.Metadata.Source, actual.Metadata.Source)
	assert.Equal(t, expected.Metadata.Rows, actual.Metadata.Rows)
	assert.Equal(t, expected.Metadata.SkippedRows, actual.Metadata.SkippedRows)
}

func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	doc := testDocument(t)
	require.NoError(t, s.Put(ctx, doc))

	stored, err := s.Get(ctx)
	require.NoError(t, err)
	assertDocument(t, doc, stored)

	replacement := schedule.Document{
		Flights: []schedule.RouteRecord{
			{Departure: "SFO", Arrival: "ORD", Dates: []string{"2024-01-01"}},
		},
	}
	require.NoError(t, s.Put(ctx, replacement))

	stored, err = s.Get(ctx)
	require.NoError(t, err)
	assertDocument(t, replacement, stored)

	require.NoError(t, s.Put(ctx, schedule.Document{Flights: []schedule.RouteRecord{}}))

	stored, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored.Flights)
}
