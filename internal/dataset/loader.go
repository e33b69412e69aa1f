package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"retailsmart/internal/config"
	apierrors "retailsmart/internal/errors"
	"retailsmart/pkg/contracts/domain"
)

// Table kinds used for cache metrics
const (
	KindSales          = "sales"
	KindCustomers      = "customers"
	KindProducts       = "products"
	KindMarketing      = "marketing"
	KindReviews        = "reviews"
	KindPredictions    = "predictions"
	KindModelInput     = "model_input"
	KindClusterSummary = "cluster_summary"
	KindAssignments    = "cluster_assignments"
	KindForecast       = "forecast"
)

// Bundle is the primary dataset as loaded from one tier
type Bundle struct {
	Source        string
	Tables        map[string]*RawTable
	Sales         []domain.Sale
	Customers     []domain.Customer
	HasCustomerID bool
	Products      []domain.Product
}

// Table returns the raw table by bundle name
func (b *Bundle) Table(name string) (*RawTable, error) {
	t, ok := b.Tables[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, apierrors.ErrUnknownTable)
	}
	return t, nil
}

// Counts returns the row counts of the five bundle tables
func (b *Bundle) Counts() domain.TableCounts {
	return domain.TableCounts{
		Customers: b.Tables[KindCustomers].Len(),
		Sales:     b.Tables[KindSales].Len(),
		Products:  b.Tables[KindProducts].Len(),
		Marketing: b.Tables[KindMarketing].Len(),
		Reviews:   b.Tables[KindReviews].Len(),
	}
}

// Predictions are the upstream churn scores
type Predictions struct {
	Scores         []domain.ChurnScore
	Column         string
	ModelInputRows int
}

// Clustering holds the segment summary and per-customer assignments
type Clustering struct {
	Summary     []domain.ClusterSummary
	HasCounts   bool
	Assignments []domain.ClusterAssignment
}

type salesTable struct {
	raw   *RawTable
	sales []domain.Sale
}

type customersTable struct {
	raw       *RawTable
	customers []domain.Customer
	hasID     bool
}

type productsTable struct {
	raw      *RawTable
	products []domain.Product
}

type churnTable struct {
	scores []domain.ChurnScore
	column string
}

type summaryTable struct {
	summary   []domain.ClusterSummary
	hasCounts bool
}

// Loader reads every dashboard input through a shared Cache
type Loader struct {
	layout config.Layout
	cache  *Cache
	logger *slog.Logger
}

// NewLoader creates a loader for layout
func NewLoader(layout config.Layout, cache *Cache, logger *slog.Logger) *Loader {
	if cache == nil {
		cache = NewCache(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		layout: layout,
		cache:  cache,
		logger: logger.With(slog.String("component", "dataset_loader")),
	}
}

// Layout returns the folder layout the loader reads from
func (l *Loader) Layout() config.Layout {
	return l.layout
}

// Cache returns the loader's cache
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Bundle loads the primary dataset from the first complete tier.
// When no tier loads the error wraps ErrDatasetUnavailable and carries the
// expected folder structure and each tier's failure.
func (l *Loader) Bundle(ctx context.Context) (*Bundle, error) {
	var attempts []string
	for _, tier := range l.layout.Tiers() {
		bundle, err := l.loadTier(ctx, tier)
		if err == nil {
			l.logger.DebugContext(ctx, "Dataset bundle loaded",
				slog.String("source", tier.Label),
				slog.Int("sales", len(bundle.Sales)))
			return bundle, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		attempts = append(attempts, fmt.Sprintf("%s: %v", tier.Label, err))
		l.logger.DebugContext(ctx, "Dataset tier unavailable",
			slog.String("source", tier.Label),
			slog.String("error", err.Error()))
	}

	l.logger.WarnContext(ctx, "Primary dataset unavailable", slog.Any("attempts", attempts))
	return nil, apierrors.NewStorageError(
		"no dataset tier could be loaded: "+strings.Join(attempts, "; "),
		apierrors.ErrDatasetUnavailable).
		WithContext(apierrors.ContextRemediation, l.layout.Remediation()).
		WithContext(apierrors.ContextAttempts, attempts)
}

func (l *Loader) loadTier(ctx context.Context, tier config.Tier) (*Bundle, error) {
	var (
		sales     *salesTable
		customers *customersTable
		products  *productsTable
		marketing *RawTable
		reviews   *RawTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = Fetch(gctx, l.cache, KindSales, tier.Files[KindSales], readSales)
		return err
	})
	g.Go(func() (err error) {
		customers, err = Fetch(gctx, l.cache, KindCustomers, tier.Files[KindCustomers], readCustomers)
		return err
	})
	g.Go(func() (err error) {
		products, err = Fetch(gctx, l.cache, KindProducts, tier.Files[KindProducts], readProducts)
		return err
	})
	g.Go(func() (err error) {
		marketing, err = Fetch(gctx, l.cache, KindMarketing, tier.Files[KindMarketing], rawReader(KindMarketing))
		return err
	})
	g.Go(func() (err error) {
		reviews, err = Fetch(gctx, l.cache, KindReviews, tier.Files[KindReviews], rawReader(KindReviews))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Bundle{
		Source: tier.Label,
		Tables: map[string]*RawTable{
			KindCustomers: customers.raw,
			KindSales:     sales.raw,
			KindProducts:  products.raw,
			KindMarketing: marketing,
			KindReviews:   reviews,
		},
		Sales:         sales.sales,
		Customers:     customers.customers,
		HasCustomerID: customers.hasID,
		Products:      products.products,
	}, nil
}

// Predictions loads churn predictions and the model input table
func (l *Loader) Predictions(ctx context.Context) (*Predictions, error) {
	churn, err := Fetch(ctx, l.cache, KindPredictions, l.layout.ChurnPredictionsCSV, readChurn)
	if err != nil {
		return nil, l.optionalError(KindPredictions, l.layout.ChurnPredictionsCSV, err)
	}
	input, err := Fetch(ctx, l.cache, KindModelInput, l.layout.ModelInputCSV, rawReader(KindModelInput))
	if err != nil {
		return nil, l.optionalError(KindPredictions, l.layout.ModelInputCSV, err)
	}
	return &Predictions{Scores: churn.scores, Column: churn.column, ModelInputRows: input.Len()}, nil
}

// Clustering loads the cluster summary and customer assignments
func (l *Loader) Clustering(ctx context.Context) (*Clustering, error) {
	summary, err := Fetch(ctx, l.cache, KindClusterSummary, l.layout.ClusterSummaryCSV, readClusterSummary)
	if err != nil {
		return nil, l.optionalError("clustering", l.layout.ClusterSummaryCSV, err)
	}
	assignments, err := Fetch(ctx, l.cache, KindAssignments, l.layout.ClusterAssignmentsCSV, readAssignments)
	if err != nil {
		return nil, l.optionalError("clustering", l.layout.ClusterAssignmentsCSV, err)
	}
	return &Clustering{Summary: summary.summary, HasCounts: summary.hasCounts, Assignments: assignments}, nil
}

// Forecast loads the forecast series
func (l *Loader) Forecast(ctx context.Context) ([]domain.ForecastPoint, error) {
	points, err := Fetch(ctx, l.cache, KindForecast, l.layout.ForecastCSV, readForecast)
	if err != nil {
		return nil, l.optionalError(KindForecast, l.layout.ForecastCSV, err)
	}
	return points, nil
}

// optionalError maps a missing file to ErrArtifactUnavailable and keeps
// parse errors as they are
func (l *Loader) optionalError(artifact, path string, err error) error {
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return apierrors.NewNotFoundError(artifact, apierrors.ErrArtifactUnavailable).
		WithContext("artifact", artifact).
		WithContext("path", path)
}

func rawReader(name string) func(string) (*RawTable, error) {
	return func(path string) (*RawTable, error) {
		return ReadCSV(name, path)
	}
}

func readSales(path string) (*salesTable, error) {
	raw, err := ReadCSV(KindSales, path)
	if err != nil {
		return nil, err
	}
	sales, err := NormalizeSales(raw)
	if err != nil {
		return nil, err
	}
	return &salesTable{raw: raw, sales: sales}, nil
}

func readCustomers(path string) (*customersTable, error) {
	raw, err := ReadCSV(KindCustomers, path)
	if err != nil {
		return nil, err
	}
	customers, hasID, err := NormalizeCustomers(raw)
	if err != nil {
		return nil, err
	}
	return &customersTable{raw: raw, customers: customers, hasID: hasID}, nil
}

func readProducts(path string) (*productsTable, error) {
	raw, err := ReadCSV(KindProducts, path)
	if err != nil {
		return nil, err
	}
	products, err := NormalizeProducts(raw)
	if err != nil {
		return nil, err
	}
	return &productsTable{raw: raw, products: products}, nil
}

func readChurn(path string) (*churnTable, error) {
	raw, err := ReadCSV(KindPredictions, path)
	if err != nil {
		return nil, err
	}
	scores, column, err := NormalizeChurn(raw)
	if err != nil {
		return nil, err
	}
	return &churnTable{scores: scores, column: column}, nil
}

func readClusterSummary(path string) (*summaryTable, error) {
	raw, err := ReadCSV(KindClusterSummary, path)
	if err != nil {
		return nil, err
	}
	summary, hasCounts, err := NormalizeClusterSummary(raw)
	if err != nil {
		return nil, err
	}
	return &summaryTable{summary: summary, hasCounts: hasCounts}, nil
}

func readAssignments(path string) ([]domain.ClusterAssignment, error) {
	raw, err := ReadCSV(KindAssignments, path)
	if err != nil {
		return nil, err
	}
	return NormalizeAssignments(raw)
}

func readForecast(path string) ([]domain.ForecastPoint, error) {
	raw, err := ReadCSV(KindForecast, path)
	if err != nil {
		return nil, err
	}
	return NormalizeForecast(raw)
}
