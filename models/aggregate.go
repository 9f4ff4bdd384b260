package models

// GroupStats holds the per-neighbourhood-group aggregates.
type GroupStats struct {
	Group            string  `json:"neighbourhood_group"`
	Count            int     `json:"count"`
	MeanPrice        float64 `json:"mean_price"`
	MeanAvailability float64 `json:"mean_availability"`
	ROIScore         float64 `json:"roi_score"`
}

// BoxStats is the five-number summary of prices for one room type.
type BoxStats struct {
	RoomType string  `json:"room_type"`
	Count    int     `json:"count"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
}

// CategoryCount is one bar/slice of a categorical distribution.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthBucket counts listings whose last review fell in Month (YYYY-MM).
type MonthBucket struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// GroupScore names a neighbourhood group together with the value that selected it.
type GroupScore struct {
	Group string  `json:"neighbourhood_group"`
	Value float64 `json:"value"`
}

// AggregateResult holds every statistic derived from an ActiveSubset.
//
// NoData is set when the subset was empty; all numeric fields are then zero,
// slices are empty and pointer fields are nil.
type AggregateResult struct {
	NoData bool `json:"no_data"`

	Count            int      `json:"count"`
	MeanPrice        float64  `json:"mean_price"`
	MeanReviews      float64  `json:"mean_reviews"`
	MeanAvailability float64  `json:"mean_availability"`
	MeanDistanceKm   *float64 `json:"mean_distance_km"`
	DistanceCount    int      `json:"distance_count"`

	// ByGroup is ordered by mean price, highest first.
	ByGroup        []GroupStats    `json:"by_group"`
	RoomTypePrices []BoxStats      `json:"room_type_prices"`
	RoomTypeCounts []CategoryCount `json:"room_type_counts"`
	GroupCounts    []CategoryCount `json:"group_counts"`
	MonthlyReviews []MonthBucket   `json:"monthly_reviews"`

	BestROI        *GroupScore `json:"best_roi"`
	MostAffordable *GroupScore `json:"most_affordable"`

	EntireHomeCount       int `json:"entire_home_count"`
	HighAvailabilityCount int `json:"high_availability_count"`
}

// PlotPoint is one row handed to the point-wise/geospatial charts.
type PlotPoint struct {
	ID                 string   `json:"id"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	DistanceKm         *float64 `json:"distance_km"`
	Price              float64  `json:"price"`
	RoomType           string   `json:"room_type"`
	NumberOfReviews    int      `json:"number_of_reviews"`
	NeighbourhoodGroup string   `json:"neighbourhood_group"`
	Neighbourhood      string   `json:"neighbourhood"`
	Availability365    int      `json:"availability_365"`
}

// DashboardView is everything the rendering layer needs for one interaction.
type DashboardView struct {
	Total     int              `json:"total"`
	Selected  int              `json:"selected"`
	NoMatches bool             `json:"no_matches"`
	Filter    FilterSpec       `json:"filter"`
	Summary   *AggregateResult `json:"summary"`
	Persona   *PersonaView     `json:"persona"`
	Points    []PlotPoint      `json:"points"`
	Sampled   bool             `json:"sampled"`
}
