package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"retailsmart/internal/app"
	"retailsmart/internal/config"
	"retailsmart/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (defaults to config.yaml or configs/config.yaml)")
	root := flag.String("root", "", "data root containing Datasets/ and Exported_files/ (overrides config)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	open := flag.Bool("open", false, "open the dashboard in a browser once the server is up")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := loadConfig(*configFile, *root, *port)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	application.OpenBrowser = *open

	if err := application.Run(); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig applies flag overrides on top of file and environment configuration
func loadConfig(configFile, root string, port int) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if root != "" {
		if cfg.Paths.DataRoot, err = filepath.Abs(root); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", root, err)
		}
	}
	if port != 0 {
		if port < 0 || port > 65535 {
			return nil, fmt.Errorf("invalid port: %d", port)
		}
		cfg.Server.Port = port
	}
	return cfg, nil
}
