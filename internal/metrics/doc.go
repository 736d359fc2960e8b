// Package metrics provides the Prometheus collector for the orchestrator
// pipeline. This package is internal and should not be imported by external
// projects.
package metrics
