package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// Control-surface constants for the filter sidebar.
const (
	MaxPriceSlider     = 1000
	DefaultPriceLo     = 0
	DefaultPriceHi     = 500
	MaxMinReviewSlider = 100
)

// FilterEngine applies a FilterSpec to the cleaned table and augments the
// surviving rows with their distance to the reference point.
type FilterEngine struct {
	logger    *utils.Logger
	reference GeoPoint
	validate  *validator.Validate
}

// NewFilterEngine creates a FilterEngine measuring distances from ReferencePoint.
func NewFilterEngine(logger *utils.Logger) *FilterEngine {
	return &FilterEngine{
		logger:    logger,
		reference: ReferencePoint,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks that spec is well formed: non-negative bounds, an ordered
// price range and no blank category names.
func (e *FilterEngine) Validate(spec models.FilterSpec) error {
	if math.IsNaN(spec.PriceLo) || math.IsNaN(spec.PriceHi) {
		return fmt.Errorf("%w: price bounds must be numbers", ErrInvalidFilter)
	}
	if err := e.validate.Struct(spec); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return nil
}

type predicate struct {
	groups     map[string]struct{}
	roomTypes  map[string]struct{}
	priceLo    float64
	priceHi    float64
	minReviews int
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func compile(spec models.FilterSpec) predicate {
	return predicate{
		groups:     toSet(spec.NeighbourhoodGroups),
		roomTypes:  toSet(spec.RoomTypes),
		priceLo:    spec.PriceLo,
		priceHi:    spec.PriceHi,
		minReviews: spec.MinReviews,
	}
}

func (p predicate) matches(l *models.Listing) bool {
	if _, ok := p.groups[l.NeighbourhoodGroup]; !ok {
		return false
	}
	if _, ok := p.roomTypes[l.RoomType]; !ok {
		return false
	}
	if l.Price < p.priceLo || l.Price > p.priceHi {
		return false
	}
	return l.NumberOfReviews >= p.minReviews
}

// Matches reports whether a single listing satisfies every clause of spec.
func Matches(l models.Listing, spec models.FilterSpec) bool {
	return compile(spec).matches(&l)
}

// Apply returns the rows of table that satisfy spec, each with its distance to
// the reference point. Rows whose distance is undefined stay in the subset with
// a nil DistanceKm.
//
// The returned subset is never nil. When it is empty the error is
// ErrEmptyFilterResult so callers can skip aggregation.
func (e *FilterEngine) Apply(table *models.CleanedTable, spec models.FilterSpec) (*models.ActiveSubset, error) {
	subset := &models.ActiveSubset{Rows: []models.ActiveRow{}}
	if table.Empty() {
		return subset, ErrEmptyFilterResult
	}

	p := compile(spec)
	for i := range table.Listings {
		l := &table.Listings[i]
		if !p.matches(l) {
			continue
		}
		row := models.ActiveRow{Listing: *l}
		if d, err := DistanceKm(l.Latitude, l.Longitude, e.reference.Lat, e.reference.Lon); err == nil {
			row.DistanceKm = &d
		} else {
			subset.UndefinedDistances++
		}
		subset.Rows = append(subset.Rows, row)
	}

	if subset.UndefinedDistances > 0 {
		undefinedDistances.Add(float64(subset.UndefinedDistances))
		e.logger.Warn("[filter] %d of %d rows have an undefined distance and are excluded from distance metrics",
			subset.UndefinedDistances, len(subset.Rows))
	}
	if subset.Empty() {
		return subset, ErrEmptyFilterResult
	}
	return subset, nil
}

// Options derives the filter control surface from a cleaned table.
func Options(table *models.CleanedTable) models.FilterOptions {
	groups := map[string]struct{}{}
	rooms := map[string]struct{}{}
	minPrice, maxPrice := math.Inf(1), math.Inf(-1)

	for _, l := range table.Listings {
		groups[l.NeighbourhoodGroup] = struct{}{}
		rooms[l.RoomType] = struct{}{}
		minPrice = math.Min(minPrice, l.Price)
		maxPrice = math.Max(maxPrice, l.Price)
	}
	if table.Empty() {
		minPrice, maxPrice = 0, 0
	}

	return models.FilterOptions{
		NeighbourhoodGroups: sortedKeys(groups),
		RoomTypes:           sortedKeys(rooms),
		PriceBounds: models.Range{
			Min: math.Floor(minPrice),
			Max: math.Min(math.Floor(maxPrice), MaxPriceSlider),
		},
		DefaultPrice:    models.Range{Min: DefaultPriceLo, Max: DefaultPriceHi},
		MinReviewBounds: models.Range{Min: 0, Max: MaxMinReviewSlider},
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
