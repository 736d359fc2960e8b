// Package config loads the orchestrator configuration. Values layer in
// priority order: built-in defaults, then the YAML file, then LEADFLOW_*
// environment variables.
package config
