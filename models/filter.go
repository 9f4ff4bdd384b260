package models

// FilterSpec is the stakeholder's current filter selection. It is built fresh on
// every interaction and never mutated afterwards.
//
// An empty NeighbourhoodGroups or RoomTypes set matches nothing.
type FilterSpec struct {
	NeighbourhoodGroups []string `json:"neighbourhood_groups" validate:"dive,required"`
	RoomTypes           []string `json:"room_types" validate:"dive,required"`
	PriceLo             float64  `json:"price_lo" validate:"gte=0"`
	PriceHi             float64  `json:"price_hi" validate:"gtefield=PriceLo"`
	MinReviews          int      `json:"min_reviews" validate:"gte=0"`
}

// Range is an inclusive numeric interval used for slider bounds.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterOptions describes the control surface derived from a cleaned table:
// the selectable categories, slider bounds and the default selection.
type FilterOptions struct {
	NeighbourhoodGroups []string `json:"neighbourhood_groups"`
	RoomTypes           []string `json:"room_types"`
	PriceBounds         Range    `json:"price_bounds"`
	DefaultPrice        Range    `json:"default_price"`
	MinReviewBounds     Range    `json:"min_review_bounds"`
}

// DefaultSpec returns the selection shown before the user touches any control:
// every group, every room type, the default price window and no review minimum.
func (o FilterOptions) DefaultSpec() FilterSpec {
	return FilterSpec{
		NeighbourhoodGroups: append([]string(nil), o.NeighbourhoodGroups...),
		RoomTypes:           append([]string(nil), o.RoomTypes...),
		PriceLo:             o.DefaultPrice.Min,
		PriceHi:             o.DefaultPrice.Max,
		MinReviews:          int(o.MinReviewBounds.Min),
	}
}

// ActiveRow is a cleaned listing that passed the filter, augmented with its
// distance to the reference point. DistanceKm is nil when the distance is undefined.
type ActiveRow struct {
	Listing
	DistanceKm *float64 `json:"distance_km"`
}

// ActiveSubset is the filtered, distance-augmented working set for one FilterSpec.
type ActiveSubset struct {
	Rows               []ActiveRow `json:"rows"`
	UndefinedDistances int         `json:"undefined_distances"`
}

// Len returns the number of rows in the subset.
func (s *ActiveSubset) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// Empty reports whether the subset has no rows.
func (s *ActiveSubset) Empty() bool { return s.Len() == 0 }

// WithDistance returns the rows whose distance is defined.
func (s *ActiveSubset) WithDistance() []ActiveRow {
	if s == nil {
		return nil
	}
	out := make([]ActiveRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		if r.DistanceKm != nil {
			out = append(out, r)
		}
	}
	return out
}
