// Package persistence stores per-contact state across restarts.
//
// The orchestrator reads a contact at the start of every turn and writes it
// back after the local commit. Backends:
//   - Memory: development and testing (default)
//   - SQLite: single-node deployments
//   - Postgres: shared deployments
package persistence
