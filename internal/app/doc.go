// Package app wires configuration, logging, OpenTelemetry, the data access
// layer, services and HTTP handlers into a runnable dashboard server.
//
// # Initialization Flow
//
//  1. Load configuration from file and RETAIL_* environment variables
//  2. Initialize logging and observability
//  3. Create the shared dataset cache and loader
//  4. Initialize services with their dependencies
//  5. Set up middleware and routes
//  6. Configure and start the HTTP server
//
// # Usage
//
//	cfg, err := config.LoadFrom(path)
//	if err != nil { ... }
//	application, err := app.NewApplication(cfg)
//	if err != nil { ... }
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes OpenTelemetry providers.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
