// Package shared provides common test helpers used across the dashboard codebase.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - A buffered slog handler for asserting on structured log output
//   - A project fixture that writes a complete data root (datasets,
//     predictions, clustering, forecast and model artifacts) into t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    root := testutil.NewProject(t, testutil.FullProject())
//	    layout := config.NewLayout(root)
//	    // load from layout
//	}
package shared
