package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

// DefaultSampleSize caps the number of points handed to point-wise charts.
const DefaultSampleSize = 2000

// Dashboard runs the whole pipeline for one filter selection:
// load (cached) → filter → distance → aggregate → persona → plot sample.
//
// It is safe for concurrent use; the cleaned table is shared read-only.
type Dashboard struct {
	logger   *utils.Logger
	loader   *DatasetLoader
	source   storage.ListingSource
	filter   *FilterEngine
	insights *InsightService

	sampleSize int
	rngMu      sync.Mutex
	rng        *rand.Rand
}

// NewDashboard wires the pipeline stages. A seed of 0 seeds the plot sampler
// from the clock; any other value makes sampling reproducible.
func NewDashboard(logger *utils.Logger, loader *DatasetLoader, source storage.ListingSource, sampleSize int, seed int64) *Dashboard {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Dashboard{
		logger:     logger,
		loader:     loader,
		source:     source,
		filter:     NewFilterEngine(logger),
		insights:   NewInsightService(logger),
		sampleSize: sampleSize,
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

// Table returns the cleaned table, or ErrEmptyDataset when nothing survived cleaning.
func (d *Dashboard) Table(ctx context.Context) (*models.CleanedTable, error) {
	table, err := d.loader.Load(ctx, d.source)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return table, ErrEmptyDataset
	}
	return table, nil
}

// Options returns the filter control surface for the loaded table.
func (d *Dashboard) Options(ctx context.Context) (models.FilterOptions, error) {
	table, err := d.Table(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return Options(table), nil
}

// Subset applies spec to the cleaned table. An empty result is returned with
// ErrEmptyFilterResult.
func (d *Dashboard) Subset(ctx context.Context, spec models.FilterSpec) (*models.ActiveSubset, error) {
	if err := d.filter.Validate(spec); err != nil {
		return nil, err
	}
	table, err := d.Table(ctx)
	if err != nil {
		return nil, err
	}
	return d.filter.Apply(table, spec)
}

// Run recomputes the dashboard for spec and persona.
//
// Load failures and ErrEmptyDataset halt the run. An empty filter result is
// not an error: the view comes back with NoMatches set and no-data aggregates.
func (d *Dashboard) Run(ctx context.Context, spec models.FilterSpec, persona models.Persona) (*models.DashboardView, error) {
	started := time.Now()
	view, outcome, err := d.run(ctx, spec, persona)
	pipelineRuns.WithLabelValues(outcome).Inc()
	pipelineDuration.Observe(time.Since(started).Seconds())
	return view, err
}

func (d *Dashboard) run(ctx context.Context, spec models.FilterSpec, persona models.Persona) (*models.DashboardView, string, error) {
	if !persona.Valid() {
		return nil, outcomeError, fmt.Errorf("%w: %q", ErrInvalidPersona, persona)
	}
	if err := d.filter.Validate(spec); err != nil {
		return nil, outcomeError, err
	}

	table, err := d.Table(ctx)
	if errors.Is(err, ErrEmptyDataset) {
		return nil, outcomeEmptyDataset, err
	}
	if err != nil {
		return nil, outcomeError, err
	}

	view := &models.DashboardView{Total: table.Len(), Filter: spec}

	subset, err := d.filter.Apply(table, spec)
	if errors.Is(err, ErrEmptyFilterResult) {
		view.NoMatches = true
		view.Summary = NoData()
		view.Points = []models.PlotPoint{}
		view.Persona, err = SelectPersona(persona, view.Summary)
		if err != nil {
			return nil, outcomeError, err
		}
		d.logger.Info("[dashboard] No listings match the current filters")
		return view, outcomeNoMatches, nil
	}
	if err != nil {
		return nil, outcomeError, err
	}

	view.Selected = subset.Len()
	view.Summary = d.insights.Summarize(subset)
	view.Persona, err = SelectPersona(persona, view.Summary)
	if err != nil {
		return nil, outcomeError, err
	}
	view.Points, view.Sampled = d.samplePoints(subset.Rows)

	d.logger.Debug("[dashboard] %d of %d listings selected for %s", view.Selected, view.Total, persona)
	return view, outcomeOK, nil
}

// samplePoints draws at most sampleSize rows without replacement, keeping the
// subset's order. Aggregates never see the sample.
func (d *Dashboard) samplePoints(rows []models.ActiveRow) ([]models.PlotPoint, bool) {
	indexes := make([]int, len(rows))
	for i := range indexes {
		indexes[i] = i
	}

	sampled := len(rows) > d.sampleSize
	if sampled {
		d.rngMu.Lock()
		for i := 0; i < d.sampleSize; i++ {
			j := i + d.rng.IntN(len(indexes)-i)
			indexes[i], indexes[j] = indexes[j], indexes[i]
		}
		d.rngMu.Unlock()
		indexes = indexes[:d.sampleSize]
		sort.Ints(indexes)
	}

	points := make([]models.PlotPoint, 0, len(indexes))
	for _, i := range indexes {
		points = append(points, toPlotPoint(rows[i]))
	}
	return points, sampled
}

func toPlotPoint(r models.ActiveRow) models.PlotPoint {
	return models.PlotPoint{
		ID:                 r.ID,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		DistanceKm:         r.DistanceKm,
		Price:              r.Price,
		RoomType:           r.RoomType,
		NumberOfReviews:    r.NumberOfReviews,
		NeighbourhoodGroup: r.NeighbourhoodGroup,
		Neighbourhood:      r.Neighbourhood,
		Availability365:    r.Availability365,
	}
}
