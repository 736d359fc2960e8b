// Package handoff implements the per-contact ownership state machine.
//
// On every inbound message the engine compares aggregated buyer- and
// seller-intent strengths against the handoff threshold and decides whether
// the contact moves to a different agent. The funnel is one-directional:
// buyer and seller are absorbing states, and a contact only returns to lead
// through an operator action outside this engine. Loop prevention inspects
// the recent handoff history so that oscillating signals cannot bounce a
// contact between agents.
package handoff
