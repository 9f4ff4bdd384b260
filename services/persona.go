package services

import (
	"fmt"
	"strings"

	"airbnb-dashboard/models"
)

// Persona metric keys.
const (
	MetricMarketPrice         = "market_price"
	MetricExpectedReviews     = "expected_reviews"
	MetricTypicalAvailability = "typical_availability"
	MetricAffordableArea      = "most_affordable_area"
	MetricAffordablePrice     = "most_affordable_price"
	MetricBestROIArea         = "best_roi_area"
	MetricROIScore            = "roi_score"
	MetricEntireHomesPct      = "entire_homes_pct"
	MetricHighAvailabilityPct = "high_availability_pct"
)

var personaGuidance = map[models.Persona][]string{
	models.PersonaHosts: {
		"Compare your pricing with neighborhood averages",
		"Encourage guest reviews to improve visibility",
		"Balance availability for optimal income",
		"Consider seasonal pricing adjustments",
	},
	models.PersonaGuests: {
		"Compare prices across different neighborhoods",
		"Look for hosts with consistent positive reviews",
		"Book early during peak seasons",
		"Consider outer boroughs for better value",
	},
	models.PersonaInvestors: {
		"Focus on high-demand, high-price areas",
		"Consider entire home properties for better ROI",
		"Diversify across multiple neighborhoods",
		"Monitor occupancy rates and seasonal trends",
	},
	models.PersonaPolicymakers: {
		"Monitor housing market impact",
		"Track tourism distribution patterns",
		"Identify commercial vs. personal rentals",
		"Ensure compliance with local regulations",
	},
}

var personaHeadings = map[models.Persona]string{
	models.PersonaHosts:        "Host Performance Indicators",
	models.PersonaGuests:       "Best Value Recommendations",
	models.PersonaInvestors:    "Investment Potential",
	models.PersonaPolicymakers: "Regulatory Insights",
}

// ParsePersona matches s case-insensitively against the four personas.
func ParsePersona(s string) (models.Persona, error) {
	for _, p := range models.Personas {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPersona, s)
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// SelectPersona projects the aggregates relevant to persona. A persona outside
// the enumeration fails with ErrInvalidPersona and no view.
func SelectPersona(persona models.Persona, agg *models.AggregateResult) (*models.PersonaView, error) {
	if !persona.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPersona, persona)
	}

	view := &models.PersonaView{
		Persona:  persona,
		Heading:  personaHeadings[persona],
		Guidance: append([]string(nil), personaGuidance[persona]...),
		Metrics:  []models.PersonaMetric{},
	}
	if agg == nil || agg.NoData {
		view.NoData = true
		return view, nil
	}

	switch persona {
	case models.PersonaHosts:
		view.Metrics = []models.PersonaMetric{
			{Key: MetricMarketPrice, Label: "Market Price", Value: agg.MeanPrice, Unit: "$"},
			{Key: MetricExpectedReviews, Label: "Expected Reviews", Value: agg.MeanReviews},
			{Key: MetricTypicalAvailability, Label: "Typical Availability", Value: agg.MeanAvailability, Unit: "days"},
		}
	case models.PersonaGuests:
		if agg.MostAffordable != nil {
			view.Metrics = []models.PersonaMetric{
				{Key: MetricAffordableArea, Label: "Most Affordable Area", Text: agg.MostAffordable.Group},
				{Key: MetricAffordablePrice, Label: "Average Price", Value: agg.MostAffordable.Value, Unit: "$"},
			}
		}
	case models.PersonaInvestors:
		if agg.BestROI != nil {
			view.Metrics = []models.PersonaMetric{
				{Key: MetricBestROIArea, Label: "Best ROI Area", Text: agg.BestROI.Group},
				{Key: MetricROIScore, Label: "ROI Score", Value: agg.BestROI.Value},
			}
		}
	case models.PersonaPolicymakers:
		view.Metrics = []models.PersonaMetric{
			{Key: MetricEntireHomesPct, Label: "% Entire Homes", Value: percentage(agg.EntireHomeCount, agg.Count), Unit: "%"},
			{Key: MetricHighAvailabilityPct, Label: "% High Availability", Value: percentage(agg.HighAvailabilityCount, agg.Count), Unit: "%"},
		}
	}
	return view, nil
}
