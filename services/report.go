package services

import (
	"fmt"
	"io"
	"strings"

	"airbnb-dashboard/models"
)

// Print renders v as a coloured terminal report.
func (s *InsightService) Print(w io.Writer, v *models.DashboardView) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  🏠 NYC AIRBNB ANALYTICS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "  \033[1m%d\033[0m listings selected out of %d total\n\n", v.Selected, v.Total)

	if v.NoMatches || v.Summary == nil || v.Summary.NoData {
		fmt.Fprintf(w, "  \033[1;33m⚠ No data matches your current filters. Please adjust your selection.\033[0m\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	r := v.Summary

	// Key metrics
	fmt.Fprintf(w, "\033[1;33m  Key Metrics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Avg price        : \033[1;32m$%.0f\033[0m\n", r.MeanPrice)
	fmt.Fprintf(w, "  Avg reviews      : \033[1m%.1f\033[0m\n", r.MeanReviews)
	fmt.Fprintf(w, "  Avg availability : \033[1m%.0f days\033[0m\n", r.MeanAvailability)
	if r.MeanDistanceKm != nil {
		fmt.Fprintf(w, "  Avg distance     : \033[1m%.1f km\033[0m\n", *r.MeanDistanceKm)
	} else {
		fmt.Fprintf(w, "  Distance         : N/A\n")
	}
	fmt.Fprintln(w)

	// Average price by area
	fmt.Fprintf(w, "\033[1;33m  Average Price by Area\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, g := range r.ByGroup {
		fmt.Fprintf(w, "  %-16s $%7.2f  (%d listings, ROI %.1f)\n", truncate(g.Group, 16), g.MeanPrice, g.Count, g.ROIScore)
	}
	fmt.Fprintln(w)

	// Room types
	fmt.Fprintf(w, "\033[1;33m  Price Range by Room Type\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, b := range r.RoomTypePrices {
		fmt.Fprintf(w, "  %-16s min %.0f | q1 %.0f | median %.0f | q3 %.0f | max %.0f\n",
			truncate(b.RoomType, 16), b.Min, b.Q1, b.Median, b.Q3, b.Max)
	}
	fmt.Fprintln(w)

	// Listings by room type
	if len(r.RoomTypeCounts) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Listings by Room Type\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		peak := r.RoomTypeCounts[0].Count
		for _, c := range r.RoomTypeCounts {
			fmt.Fprintf(w, "  %-16s %s (%d)\n", truncate(c.Name, 16), bar(c.Count, peak, 30), c.Count)
		}
		fmt.Fprintln(w)
	}

	if v.Persona != nil {
		fmt.Fprintf(w, "\033[1;33m  Insights for %s: %s\033[0m\n", v.Persona.Persona, v.Persona.Heading)
		fmt.Fprintf(w, "  %s\n", thin)
		for _, m := range v.Persona.Metrics {
			fmt.Fprintf(w, "  %-22s : \033[1m%s\033[0m\n", m.Label, formatMetric(m))
		}
		for _, g := range v.Persona.Guidance {
			fmt.Fprintf(w, "  • %s\n", g)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func formatMetric(m models.PersonaMetric) string {
	switch {
	case m.Text != "":
		return m.Text
	case m.Unit == "$":
		return fmt.Sprintf("$%.0f", m.Value)
	case m.Unit == "%":
		return fmt.Sprintf("%.1f%%", m.Value)
	case m.Unit != "":
		return fmt.Sprintf("%.0f %s", m.Value, m.Unit)
	default:
		return fmt.Sprintf("%.1f", m.Value)
	}
}

// bar scales n against peak into at most width blocks.
func bar(n, peak, width int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	blocks := n * width / peak
	if blocks == 0 {
		blocks = 1
	}
	return strings.Repeat("█", blocks)
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
