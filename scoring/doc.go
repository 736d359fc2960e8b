// Package scoring combines extracted signals into qualification scores.
//
// Two independent scores are computed per inbound turn: Readiness (financial
// readiness) and Commitment (psychological commitment), both in [0,100].
// The weight table is versioned and keyed by the agent that currently owns
// the contact; adding an agent kind means adding a table entry.
package scoring
