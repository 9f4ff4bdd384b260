package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"airbnb-dashboard/api"
	"airbnb-dashboard/config"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger

	rootCmd = &cobra.Command{
		Use:           "airbnb-dashboard",
		Short:         "NYC Airbnb analytics for hosts, guests, investors and policymakers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger = utils.NewLoggerTo(utils.ParseLevel(cfg.LogLevel), os.Stdout, os.Stderr)
			return nil
		},
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for one filter selection and persona",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
	importCmd = &cobra.Command{
		Use:   "import [csv or xlsx path]",
		Short: "Seed the PostgreSQL raw listings table from a file",
		Long:  `Reads a listings file as-is and replaces the contents of POSTGRES_TABLE, so the dashboard can run with DATA_SOURCE=postgres.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImport,
	}

	reportPersona    string
	reportGroups     []string
	reportRoomTypes  []string
	reportPriceMin   float64
	reportPriceMax   float64
	reportMinReviews int
	reportExport     string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportPersona, "persona", "p", string(models.PersonaHosts), "Hosts, Guests, Investors or Policymakers")
	reportCmd.Flags().StringSliceVar(&reportGroups, "group", nil, "Neighbourhood groups to include (default all)")
	reportCmd.Flags().StringSliceVar(&reportRoomTypes, "room-type", nil, "Room types to include (default all)")
	reportCmd.Flags().Float64Var(&reportPriceMin, "price-min", services.DefaultPriceLo, "Lowest nightly price")
	reportCmd.Flags().Float64Var(&reportPriceMax, "price-max", services.DefaultPriceHi, "Highest nightly price")
	reportCmd.Flags().IntVar(&reportMinReviews, "min-reviews", 0, "Minimum number of reviews")
	reportCmd.Flags().StringVar(&reportExport, "export", "", "Write the filtered listings to this CSV file")

	rootCmd.AddCommand(importCmd)
}

func retryConfig() *utils.RetryConfig {
	return &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 500 * time.Millisecond, Logger: logger}
}

// openSource builds the configured ListingSource. The returned func releases it.
func openSource(ctx context.Context) (storage.ListingSource, func(), error) {
	switch cfg.DataSource {
	case config.SourceXLSX:
		return storage.NewXLSXSource(cfg.DataPath, cfg.XLSXSheet), func() {}, nil
	case config.SourcePostgres:
		src, err := storage.NewPostgresSource(ctx, cfg.DSN(), cfg.PostgresTable, retryConfig())
		if err != nil {
			return nil, nil, err
		}
		return src, func() { _ = src.Close() }, nil
	default:
		return storage.NewCSVSource(cfg.DataPath), func() {}, nil
	}
}

func newDashboard(ctx context.Context) (*services.Dashboard, func(), error) {
	src, release, err := openSource(ctx)
	if err != nil {
		return nil, nil, err
	}
	d := services.NewDashboard(logger, services.NewDatasetLoader(logger), src, cfg.SampleSize, cfg.SampleSeed)
	return d, release, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, release, err := newDashboard(ctx)
	if err != nil {
		return err
	}
	defer release()

	// Warm the cache so the first request does not pay for cleaning.
	if _, err := d.Options(ctx); err != nil {
		logger.Warn("[serve] Dataset not ready: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewServer(d, logger, cfg.RequestTimeout).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[serve] Listening on %s (source: %s)", cfg.HTTPAddr, cfg.DataSource)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("[serve] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	persona, err := services.ParsePersona(reportPersona)
	if err != nil {
		return err
	}

	d, release, err := newDashboard(ctx)
	if err != nil {
		return err
	}
	defer release()

	opts, err := d.Options(ctx)
	if err != nil {
		return err
	}
	spec := opts.DefaultSpec()
	flags := cmd.Flags()
	if flags.Changed("group") {
		spec.NeighbourhoodGroups = reportGroups
	}
	if flags.Changed("room-type") {
		spec.RoomTypes = reportRoomTypes
	}
	spec.PriceLo, spec.PriceHi, spec.MinReviews = reportPriceMin, reportPriceMax, reportMinReviews

	view, err := d.Run(ctx, spec, persona)
	if err != nil {
		return err
	}
	services.NewInsightService(logger).Print(os.Stdout, view)

	if reportExport == "" {
		return nil
	}
	return exportSubset(ctx, d, spec, reportExport)
}

func exportSubset(ctx context.Context, d *services.Dashboard, spec models.FilterSpec, path string) error {
	subset, err := d.Subset(ctx, spec)
	if err != nil && !errors.Is(err, services.ErrEmptyFilterResult) {
		return err
	}

	var w storage.ActiveRowWriter
	w, err = storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(subset.Rows); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info("[report] Exported %d listings to %s", subset.Len(), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := cfg.DataPath
	if len(args) == 1 {
		path = args[0]
	}

	var src storage.ListingSource = storage.NewCSVSource(path)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		src = storage.NewXLSXSource(path, cfg.XLSXSheet)
	}
	raw, err := src.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	var w storage.RawListingWriter
	w, err = storage.NewPostgresWriter(ctx, cfg.DSN(), cfg.PostgresTable, retryConfig())
	if err != nil {
		logger.Error("[import] Failed to connect to PostgreSQL: %v", err)
		logger.Error("[import] Make sure Docker is running: docker compose up -d")
		return err
	}
	defer w.Close()

	if err := w.WriteRaw(ctx, raw); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	logger.Info("[import] Stored %d raw listings from %s in %s", len(raw), path, cfg.PostgresTable)
	return nil
}
