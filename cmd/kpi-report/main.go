package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	"retailsmart/internal/exporter"
	"retailsmart/internal/infrastructure"
	"retailsmart/internal/middleware"
	"retailsmart/internal/services"
	"retailsmart/pkg/contracts/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		slog.Error("KPI report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads the dataset, builds the KPI report and writes it in the
// requested formats. Written paths are printed to stdout, one per line.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("kpi-report", flag.ContinueOnError)
	configFile := fs.String("config", "", "path to a YAML config file")
	root := fs.String("root", "", "data root containing Datasets/ and Exported_files/ (overrides config)")
	from := fs.String("from", "", "first sales day to include, YYYY-MM-DD")
	to := fs.String("to", "", "last sales day to include, YYYY-MM-DD")
	format := fs.String("format", exporter.FormatBoth, "output format: csv, xlsx or both")
	outDir := fs.String("out", "", "output directory (defaults to the configured export dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !exporter.ValidFormat(*format) {
		return fmt.Errorf("invalid format %q (want csv, xlsx or both)", *format)
	}

	dr, err := parseRange(*from, *to)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if *root != "" {
		if cfg.Paths.DataRoot, err = filepath.Abs(*root); err != nil {
			return fmt.Errorf("resolve %s: %w", *root, err)
		}
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ExportDir
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()
	logger = infrastructure.WithComponent(logger, "kpi-report")
	ctx = infrastructure.EnsureTraceID(ctx)

	layout := cfg.Layout()
	cache := dataset.NewCache(nil)
	loader := dataset.NewLoader(layout, cache, logger)
	model := services.NewPredictionService(layout, cache, cfg.Inference, nil, logger)
	dashboard := services.NewDashboardService(loader, nil, nil, model, cfg.Dashboard, logger)
	reports := services.NewReportService(dashboard, *outDir, nil, logger)

	start := time.Now()
	saved, err := reports.Save(ctx, dr, *format)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "KPI report written",
		slog.Int("files", len(saved)),
		slog.Duration("duration", time.Since(start)))
	for _, info := range saved {
		fmt.Fprintln(stdout, info.Path)
	}
	return nil
}

func loadConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadFrom(configFile)
	}
	return config.Load()
}

// parseRange parses the optional -from and -to days
func parseRange(from, to string) (domain.DateRange, error) {
	var (
		dr  domain.DateRange
		err error
	)
	if from != "" {
		if dr.From, err = time.ParseInLocation(middleware.DateLayout, from, time.UTC); err != nil {
			return dr, fmt.Errorf("invalid -from %q: want YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if dr.To, err = time.ParseInLocation(middleware.DateLayout, to, time.UTC); err != nil {
			return dr, fmt.Errorf("invalid -to %q: want YYYY-MM-DD", to)
		}
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return dr, fmt.Errorf("-from %s is after -to %s", from, to)
	}
	return dr, nil
}
