package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
)

func subsetOf(rows ...models.ActiveRow) *models.ActiveSubset {
	return &models.ActiveSubset{Rows: rows}
}

func TestSummarizeEmpty(t *testing.T) {
	s := NewInsightService(newTestLogger())

	for _, subset := range []*models.ActiveSubset{nil, subsetOf()} {
		r := s.Summarize(subset)
		require.NotNil(t, r)
		assert.True(t, r.NoData)
		assert.Zero(t, r.Count)
		assert.Nil(t, r.BestROI)
		assert.Nil(t, r.MostAffordable)
		assert.Nil(t, r.MeanDistanceKm)
		assert.NotNil(t, r.ByGroup)
		assert.Empty(t, r.ByGroup)
		assert.Empty(t, r.MonthlyReviews)
	}
}

func TestSummarizeMeans(t *testing.T) {
	s := NewInsightService(newTestLogger())
	undefined := models.ActiveRow{Listing: listing("3", "Queens", "Private room", 300, 30, 300)}

	r := s.Summarize(subsetOf(
		row(listing("1", "Queens", "Private room", 100, 10, 100), 1),
		row(listing("2", "Queens", "Private room", 200, 20, 200), 3),
		undefined,
	))

	assert.False(t, r.NoData)
	assert.Equal(t, 3, r.Count)
	assert.InDelta(t, 200, r.MeanPrice, 1e-9)
	assert.InDelta(t, 20, r.MeanReviews, 1e-9)
	assert.InDelta(t, 200, r.MeanAvailability, 1e-9)
	require.NotNil(t, r.MeanDistanceKm)
	assert.InDelta(t, 2, *r.MeanDistanceKm, 1e-9)
	assert.Equal(t, 2, r.DistanceCount)
}

func TestSummarizeNoDefinedDistance(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(models.ActiveRow{Listing: listing("1", "Bronx", "Private room", 80, 1, 1)}))

	assert.False(t, r.NoData)
	assert.Nil(t, r.MeanDistanceKm)
	assert.Zero(t, r.DistanceCount)
}

func TestBestROI(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(
		row(listing("1", "A", "Private room", 200, 0, 100), 1),
		row(listing("2", "B", "Private room", 100, 0, 300), 1),
	))

	require.NotNil(t, r.BestROI)
	assert.Equal(t, "B", r.BestROI.Group)
	assert.InDelta(t, 82.19, r.BestROI.Value, 0.01)

	require.Len(t, r.ByGroup, 2)
	assert.Equal(t, "A", r.ByGroup[0].Group, "groups are ordered by mean price, highest first")
	assert.InDelta(t, 54.79, r.ByGroup[0].ROIScore, 0.01)
	assert.InDelta(t, 82.19, r.ByGroup[1].ROIScore, 0.01)
}

func TestMostAffordable(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(
		row(listing("1", "Manhattan", "Private room", 160, 0, 10), 1),
		row(listing("2", "Manhattan", "Private room", 200, 0, 10), 1),
		row(listing("3", "Bronx", "Private room", 90, 0, 10), 1),
		row(listing("4", "Brooklyn", "Private room", 120, 0, 10), 1),
	))

	require.NotNil(t, r.MostAffordable)
	assert.Equal(t, "Bronx", r.MostAffordable.Group)
	assert.Equal(t, 90.0, r.MostAffordable.Value)

	var groups []string
	for _, g := range r.ByGroup {
		groups = append(groups, g.Group)
	}
	assert.Equal(t, []string{"Manhattan", "Brooklyn", "Bronx"}, groups)
	assert.Equal(t, []models.CategoryCount{
		{Name: "Manhattan", Count: 2},
		{Name: "Bronx", Count: 1},
		{Name: "Brooklyn", Count: 1},
	}, r.GroupCounts)
}

func TestGroupTiesBreakAlphabetically(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(
		row(listing("1", "Zeta", "Private room", 100, 0, 100), 1),
		row(listing("2", "Alpha", "Private room", 100, 0, 100), 1),
	))

	assert.Equal(t, "Alpha", r.BestROI.Group)
	assert.Equal(t, "Alpha", r.MostAffordable.Group)
	assert.Equal(t, "Alpha", r.ByGroup[0].Group)
}

func TestRoomTypeAggregates(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(
		row(listing("1", "Queens", "Private room", 40, 0, 0), 1),
		row(listing("2", "Queens", "Private room", 10, 0, 0), 1),
		row(listing("3", "Queens", "Private room", 30, 0, 0), 1),
		row(listing("4", "Queens", "Private room", 20, 0, 0), 1),
		row(listing("5", "Queens", "Entire home/apt", 150, 0, 0), 1),
	))

	require.Len(t, r.RoomTypePrices, 2)
	assert.Equal(t, models.BoxStats{RoomType: "Entire home/apt", Count: 1, Min: 150, Q1: 150, Median: 150, Q3: 150, Max: 150}, r.RoomTypePrices[0])
	assert.Equal(t, models.BoxStats{RoomType: "Private room", Count: 4, Min: 10, Q1: 17.5, Median: 25, Q3: 32.5, Max: 40}, r.RoomTypePrices[1])

	assert.Equal(t, []models.CategoryCount{
		{Name: "Private room", Count: 4},
		{Name: "Entire home/apt", Count: 1},
	}, r.RoomTypeCounts)
	assert.Equal(t, 1, r.EntireHomeCount)
}

func TestMonthlyReviews(t *testing.T) {
	s := NewInsightService(newTestLogger())
	at := func(id string, d *time.Time) models.ActiveRow {
		l := listing(id, "Bronx", "Private room", 50, 1, 1)
		l.LastReview = d
		return row(l, 1)
	}

	r := s.Summarize(subsetOf(
		at("1", date(2019, time.May, 1)),
		at("2", date(2019, time.May, 30)),
		at("3", date(2018, time.December, 31)),
		at("4", nil),
	))

	assert.Equal(t, []models.MonthBucket{
		{Month: "2018-12", Count: 1},
		{Month: "2019-05", Count: 2},
	}, r.MonthlyReviews)
}

func TestHighAvailabilityCount(t *testing.T) {
	s := NewInsightService(newTestLogger())

	r := s.Summarize(subsetOf(
		row(listing("1", "Bronx", "Private room", 50, 1, 300), 1),
		row(listing("2", "Bronx", "Private room", 50, 1, 301), 1),
		row(listing("3", "Bronx", "Private room", 50, 1, 365), 1),
	))

	assert.Equal(t, 2, r.HighAvailabilityCount)
}

func TestROIScore(t *testing.T) {
	assert.Equal(t, 0.0, ROIScore(150, 0))
	assert.InDelta(t, 150, ROIScore(150, 365), 1e-9)
}
