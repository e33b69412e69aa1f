// Package config provides centralized configuration management for the dashboard.
// It handles loading configuration from multiple sources, validation, and the
// folder layout the dashboard reads its datasets and model artifacts from.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file (config.yaml or configs/config.yaml)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern RETAIL_<SECTION>_<KEY>:
//
//	RETAIL_SERVER_PORT=8501
//	RETAIL_PATHS_DATA_ROOT=/workspaces/Capstone_Project
//	RETAIL_INFERENCE_FILL_POLICY=mean
//	RETAIL_LOGGING_LEVEL=debug
//
// # Folder Layout
//
// Layout resolves every dataset and artifact path beneath the data root.
// The primary dataset bundle is searched in two tiers, cleaned exports first
// and raw datasets second.
package config
