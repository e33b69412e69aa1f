package services

import (
	"context"
	"testing"

	"retailsmart/internal/config"
	"retailsmart/internal/dataset"
	"retailsmart/internal/shared/testutil"
)

type stubModel bool

func (m stubModel) Available(context.Context) bool { return bool(m) }

func defaultLimits() config.DashboardConfig {
	return config.Default().Dashboard
}

// newDashboard builds a dashboard service over a fixture project
func newDashboard(t *testing.T, opts testutil.ProjectOptions, model ModelChecker) (*DashboardService, config.Layout) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	layout := config.NewLayout(testutil.NewProject(t, opts))
	loader := dataset.NewLoader(layout, dataset.NewCache(nil), logger)
	return NewDashboardService(loader, nil, nil, model, defaultLimits(), logger), layout
}

func ptr(v float64) *float64 { return &v }
