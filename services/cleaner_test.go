package services

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
)

func TestCleanerParsePrice(t *testing.T) {
	c := NewCleaner(newTestLogger())

	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"149", 149, true},
		{"$1,200.50", 1200.50, true},
		{" 0 ", 0, true},
		{"-10", -10, true},
		{"", 0, false},
		{"free", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		got, ok := c.parsePrice(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "parsePrice(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "parsePrice(%q)", tt.raw)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"12", 12, true},
		{"12.0", 12, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"many", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseCount(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "parseCount(%q) ok", tt.raw)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "parseCount(%q)", tt.raw)
		}
	}
}

func TestParseReviewDate(t *testing.T) {
	tests := []struct {
		raw  string
		want *time.Time
	}{
		{"2019-05-21", date(2019, time.May, 21)},
		{"2019/05/21", date(2019, time.May, 21)},
		{"21/05/2019", date(2019, time.May, 21)},
		{"03-04-2019", date(2019, time.April, 3)},
		{"", nil},
		{"yesterday", nil},
		{"2019-13-45", nil},
	}
	for _, tt := range tests {
		got := parseReviewDate(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, "parseReviewDate(%q)", tt.raw)
			continue
		}
		require.NotNil(t, got, "parseReviewDate(%q)", tt.raw)
		assert.True(t, tt.want.Equal(*got), "parseReviewDate(%q) = %v", tt.raw, got)
	}
}

func TestCleanerDropsUnknownLocations(t *testing.T) {
	c := NewCleaner(newTestLogger())
	noLat := raw("1", "Bronx", "Private room", 50, 1, 10, "")
	noLat.Latitude = ""
	nanLon := raw("2", "Bronx", "Private room", 50, 1, 10, "")
	nanLon.Longitude = "NaN"
	zeroLat := raw("3", "Bronx", "Private room", 50, 1, 10, "")
	zeroLat.Latitude = "0"
	zeroLon := raw("4", "Bronx", "Private room", 50, 1, 10, "")
	zeroLon.Longitude = "0.0"
	ok := raw("5", "Bronx", "Private room", 50, 1, 10, "")

	cleaned, stats := c.Clean([]*models.RawListing{noLat, nanLon, zeroLat, zeroLon, ok})

	require.Len(t, cleaned, 1)
	assert.Equal(t, "5", cleaned[0].ID)
	assert.Equal(t, 2, stats.MissingCoordinates)
	assert.Equal(t, 2, stats.ZeroCoordinates)
	assert.Equal(t, 4, stats.Dropped())
}

func TestCleanerTrimsPriceOutliers(t *testing.T) {
	c := NewCleaner(newTestLogger())
	var rows []*models.RawListing
	for i := 1; i <= 100; i++ {
		rows = append(rows, raw(strconv.Itoa(i), "Queens", "Private room", float64(i), 1, 10, "2019-01-01"))
	}
	// A huge price at an unknown location must not influence the threshold.
	far := raw("far", "Queens", "Private room", 100000, 1, 10, "")
	far.Latitude = "0"
	rows = append(rows, far)

	cleaned, stats := c.Clean(rows)

	assert.InDelta(t, 99.01, stats.PriceThreshold, 1e-9)
	assert.Equal(t, 1, stats.PriceOutliers)
	assert.Equal(t, 1, stats.ZeroCoordinates)
	require.Len(t, cleaned, 99)
	for _, l := range cleaned {
		assert.Greater(t, l.Price, 0.0)
		assert.LessOrEqual(t, l.Price, stats.PriceThreshold)
		assert.NotZero(t, l.Latitude)
		assert.NotZero(t, l.Longitude)
	}
}

func TestCleanerThresholdIncludesMalformedRows(t *testing.T) {
	c := NewCleaner(newTestLogger())
	var rows []*models.RawListing
	for i := 1; i <= 99; i++ {
		rows = append(rows, raw(strconv.Itoa(i), "Queens", "Private room", float64(i), 1, 10, ""))
	}
	rows = append(rows, raw("luxury", "Queens", "Entire home/apt", 10000, 1, 400, ""))

	cleaned, stats := c.Clean(rows)

	assert.InDelta(t, 198.01, stats.PriceThreshold, 1e-9)
	assert.Equal(t, 1, stats.Malformed)
	assert.Zero(t, stats.PriceOutliers)
	require.Len(t, cleaned, 99)
	assert.Equal(t, 99.0, cleaned[98].Price)
}

func TestCleanerDropsNonPositiveAndMalformed(t *testing.T) {
	c := NewCleaner(newTestLogger())
	zero := raw("zero", "Bronx", "Shared room", 0, 1, 10, "")
	text := raw("text", "Bronx", "Shared room", 0, 1, 10, "")
	text.Price = "call me"
	badReviews := raw("reviews", "Bronx", "Shared room", 40, 1, 10, "")
	badReviews.NumberOfReviews = "lots"
	badAvail := raw("avail", "Bronx", "Shared room", 40, 1, 400, "")
	good := raw("good", "Bronx", "Shared room", 40, 1, 10, "garbage")
	dated := raw("dated", "Bronx", "Shared room", 40, 1, 10, "2019-01-01")

	cleaned, stats := c.Clean([]*models.RawListing{zero, text, badReviews, badAvail, good, dated, nil})

	require.Len(t, cleaned, 2)
	assert.Equal(t, "good", cleaned[0].ID)
	assert.Nil(t, cleaned[0].LastReview, "unparseable date should be absent")
	assert.Equal(t, "dated", cleaned[1].ID)
	assert.Equal(t, 40.0, stats.PriceThreshold)
	assert.Equal(t, 2, stats.NonPositivePrice)
	assert.Equal(t, 3, stats.Malformed)
	assert.Equal(t, 1, stats.AbsentLastReview)
	assert.Equal(t, 7, stats.RowsRead)
}

func TestCleanerNormalisesText(t *testing.T) {
	c := NewCleaner(newTestLogger())
	r := raw("1", "  Staten   Island ", " Entire home/apt ", 100, 3, 20, "2019-06-30")

	cleaned, _ := c.Clean([]*models.RawListing{r})

	require.Len(t, cleaned, 1)
	assert.Equal(t, "Staten Island", cleaned[0].NeighbourhoodGroup)
	assert.Equal(t, "Entire home/apt", cleaned[0].RoomType)
	require.NotNil(t, cleaned[0].LastReview)
	assert.Equal(t, "2019-06", cleaned[0].LastReview.Format("2006-01"))
}

func TestCleanerEmptyInput(t *testing.T) {
	c := NewCleaner(newTestLogger())
	cleaned, stats := c.Clean(nil)
	assert.Empty(t, cleaned)
	assert.Zero(t, stats.PriceThreshold)
}

func TestQuantileSorted(t *testing.T) {
	assert.True(t, isNaN(quantileSorted(nil, 0.5)))
	assert.Equal(t, 7.0, quantileSorted([]float64{7}, 0.99))
	assert.Equal(t, 2.5, quantileSorted([]float64{1, 2, 3, 4}, 0.5))
	assert.InDelta(t, 1.75, quantileSorted([]float64{1, 2, 3, 4}, 0.25), 1e-12)
	assert.Equal(t, 4.0, quantile([]float64{4, 1, 3, 2}, 1))
}

func isNaN(f float64) bool { return f != f }
