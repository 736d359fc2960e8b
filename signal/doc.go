// Package signal turns raw conversation text into typed qualification
// signals. Extraction is pure and deterministic: no I/O, no clock, and
// malformed input yields a zero SignalSet rather than an error.
package signal
