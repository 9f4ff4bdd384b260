package services

import (
	"sort"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const (
	// EntireHomeRoomType is the room type counted as a whole-unit rental.
	EntireHomeRoomType = "Entire home/apt"
	// HighAvailabilityDays is the availability above which a listing counts as
	// near-permanently rented out.
	HighAvailabilityDays = 300
)

const daysPerYear = 365.0

// InsightService computes summary statistics and groupwise aggregates over an
// active subset.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// NoData returns the well-defined result for an empty subset.
func NoData() *models.AggregateResult {
	return &models.AggregateResult{
		NoData:         true,
		ByGroup:        []models.GroupStats{},
		RoomTypePrices: []models.BoxStats{},
		RoomTypeCounts: []models.CategoryCount{},
		GroupCounts:    []models.CategoryCount{},
		MonthlyReviews: []models.MonthBucket{},
	}
}

type groupAcc struct {
	count    int
	sumPrice float64
	sumAvail float64
}

// ROIScore is the heuristic mean price × (mean availability / 365).
func ROIScore(meanPrice, meanAvailability float64) float64 {
	return meanPrice * (meanAvailability / daysPerYear)
}

// Summarize computes every aggregate for subset. An empty or nil subset yields NoData().
func (s *InsightService) Summarize(subset *models.ActiveSubset) *models.AggregateResult {
	if subset.Empty() {
		return NoData()
	}

	r := &models.AggregateResult{Count: subset.Len()}

	var sumPrice, sumReviews, sumAvail, sumDist float64
	groups := map[string]*groupAcc{}
	roomPrices := map[string][]float64{}
	months := map[string]int{}

	for i := range subset.Rows {
		row := &subset.Rows[i]
		sumPrice += row.Price
		sumReviews += float64(row.NumberOfReviews)
		sumAvail += float64(row.Availability365)
		if row.DistanceKm != nil {
			sumDist += *row.DistanceKm
			r.DistanceCount++
		}

		g, ok := groups[row.NeighbourhoodGroup]
		if !ok {
			g = &groupAcc{}
			groups[row.NeighbourhoodGroup] = g
		}
		g.count++
		g.sumPrice += row.Price
		g.sumAvail += float64(row.Availability365)

		roomPrices[row.RoomType] = append(roomPrices[row.RoomType], row.Price)

		if row.LastReview != nil {
			months[row.LastReview.Format("2006-01")]++
		}
		if row.RoomType == EntireHomeRoomType {
			r.EntireHomeCount++
		}
		if row.Availability365 > HighAvailabilityDays {
			r.HighAvailabilityCount++
		}
	}

	r.MeanPrice = mean(sumPrice, r.Count)
	r.MeanReviews = mean(sumReviews, r.Count)
	r.MeanAvailability = mean(sumAvail, r.Count)
	if r.DistanceCount > 0 {
		d := mean(sumDist, r.DistanceCount)
		r.MeanDistanceKm = &d
	}

	r.ByGroup, r.BestROI, r.MostAffordable = groupStats(groups)
	r.RoomTypePrices = boxStats(roomPrices)
	r.RoomTypeCounts = countsFromLengths(roomPrices)
	r.GroupCounts = groupCounts(groups)
	r.MonthlyReviews = monthBuckets(months)

	s.logger.Debug("[insights] Summarized %d listings across %d groups", r.Count, len(groups))
	return r
}

// groupStats builds per-group aggregates in ascending name order, picks the
// best ROI and most affordable groups (first in that order wins ties) and
// returns the stats re-ordered by mean price, highest first.
func groupStats(groups map[string]*groupAcc) ([]models.GroupStats, *models.GroupScore, *models.GroupScore) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	stats := make([]models.GroupStats, 0, len(names))
	var best, cheapest *models.GroupScore
	for _, name := range names {
		g := groups[name]
		gs := models.GroupStats{
			Group:            name,
			Count:            g.count,
			MeanPrice:        mean(g.sumPrice, g.count),
			MeanAvailability: mean(g.sumAvail, g.count),
		}
		gs.ROIScore = ROIScore(gs.MeanPrice, gs.MeanAvailability)
		stats = append(stats, gs)

		if best == nil || gs.ROIScore > best.Value {
			best = &models.GroupScore{Group: name, Value: gs.ROIScore}
		}
		if cheapest == nil || gs.MeanPrice < cheapest.Value {
			cheapest = &models.GroupScore{Group: name, Value: gs.MeanPrice}
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].MeanPrice > stats[j].MeanPrice
	})
	return stats, best, cheapest
}

func boxStats(prices map[string][]float64) []models.BoxStats {
	names := make([]string, 0, len(prices))
	for name := range prices {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.BoxStats, 0, len(names))
	for _, name := range names {
		sorted := append([]float64(nil), prices[name]...)
		sort.Float64s(sorted)
		out = append(out, models.BoxStats{
			RoomType: name,
			Count:    len(sorted),
			Min:      sorted[0],
			Q1:       quantileSorted(sorted, 0.25),
			Median:   quantileSorted(sorted, 0.5),
			Q3:       quantileSorted(sorted, 0.75),
			Max:      sorted[len(sorted)-1],
		})
	}
	return out
}

// sortCounts orders by count descending, then name ascending.
func sortCounts(counts []models.CategoryCount) []models.CategoryCount {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
	return counts
}

func countsFromLengths(m map[string][]float64) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(m))
	for name, v := range m {
		out = append(out, models.CategoryCount{Name: name, Count: len(v)})
	}
	return sortCounts(out)
}

func groupCounts(groups map[string]*groupAcc) []models.CategoryCount {
	out := make([]models.CategoryCount, 0, len(groups))
	for name, g := range groups {
		out = append(out, models.CategoryCount{Name: name, Count: g.count})
	}
	return sortCounts(out)
}

func monthBuckets(months map[string]int) []models.MonthBucket {
	out := make([]models.MonthBucket, 0, len(months))
	for m, n := range months {
		out = append(out, models.MonthBucket{Month: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
