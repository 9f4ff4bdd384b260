package services

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// PriceQuantile is the quantile above which prices are trimmed as outliers.
const PriceQuantile = 0.99

// reviewDateLayouts are tried in order; day-first forms come after ISO forms.
var reviewDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
}

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// candidate is a row that passed coordinate and type checks but not yet the price rules.
type candidate struct {
	listing models.Listing
	priceOK bool
}

// Clean coerces types and drops rows with unknown locations. The 99th
// percentile of the prices of the located rows becomes the threshold; rows
// with malformed counts, prices above the threshold or non-positive prices are
// then dropped. The threshold used is returned in the stats.
func (c *Cleaner) Clean(raw []*models.RawListing) ([]models.Listing, models.CleaningStats) {
	stats := models.CleaningStats{RowsRead: len(raw)}
	candidates := make([]candidate, 0, len(raw))
	prices := make([]float64, 0, len(raw))

	for _, r := range raw {
		if r == nil {
			stats.Malformed++
			continue
		}
		lat, latOK := parseCoordinate(r.Latitude)
		lon, lonOK := parseCoordinate(r.Longitude)
		if !latOK || !lonOK {
			stats.MissingCoordinates++
			continue
		}
		if lat == 0 || lon == 0 {
			stats.ZeroCoordinates++
			continue
		}

		// Every row with a known location counts towards the threshold,
		// including rows later dropped for malformed counts.
		price, priceOK := c.parsePrice(r.Price)
		if priceOK {
			prices = append(prices, price)
		}

		reviews, ok := parseCount(r.NumberOfReviews)
		if !ok {
			c.logger.Debug("[cleaner] Malformed review count %q for listing %s", r.NumberOfReviews, r.ID)
			stats.Malformed++
			continue
		}
		availability, ok := parseCount(r.Availability365)
		if !ok || availability > 365 {
			c.logger.Debug("[cleaner] Malformed availability %q for listing %s", r.Availability365, r.ID)
			stats.Malformed++
			continue
		}

		candidates = append(candidates, candidate{
			listing: models.Listing{
				ID:                 strings.TrimSpace(r.ID),
				Name:               normaliseText(r.Name),
				HostName:           normaliseText(r.HostName),
				NeighbourhoodGroup: normaliseText(r.NeighbourhoodGroup),
				Neighbourhood:      normaliseText(r.Neighbourhood),
				Latitude:           lat,
				Longitude:          lon,
				RoomType:           normaliseText(r.RoomType),
				Price:              price,
				NumberOfReviews:    reviews,
				LastReview:         parseReviewDate(r.LastReview),
				Availability365:    availability,
			},
			priceOK: priceOK,
		})
	}

	threshold := 0.0
	if len(prices) > 0 {
		threshold = quantile(prices, PriceQuantile)
	}
	stats.PriceThreshold = threshold

	result := make([]models.Listing, 0, len(candidates))
	for _, cand := range candidates {
		l := cand.listing
		switch {
		case !cand.priceOK:
			stats.NonPositivePrice++
			continue
		case l.Price > threshold:
			stats.PriceOutliers++
			continue
		case l.Price <= 0:
			stats.NonPositivePrice++
			continue
		}
		if l.LastReview == nil {
			stats.AbsentLastReview++
		}
		result = append(result, l)
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d: %d missing coords, %d zero coords, %d malformed, %d price outliers > %.2f, %d non-positive price)",
		stats.RowsRead, len(result), stats.Dropped(), stats.MissingCoordinates, stats.ZeroCoordinates,
		stats.Malformed, stats.PriceOutliers, threshold, stats.NonPositivePrice)
	return result, stats
}

// parseCoordinate parses a degree value; empty, non-numeric and non-finite values fail.
func parseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parsePrice accepts plain numbers and currency-formatted values such as "$1,200.50".
func (c *Cleaner) parsePrice(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseCount parses a non-negative integer, accepting integral floats like "12.0".
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n >= 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// parseReviewDate returns nil for empty or unparseable values.
func parseReviewDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
