// Package orchestrator runs the per-message pipeline: extract signals, score
// qualification, decide handoff, generate the reply, guard it for compliance,
// commit contact state, then emit CRM side effects.
//
// Processing is effectively serial per contact. Local state is committed
// before any CRM delivery is attempted, so the contact store is always the
// authority; CRM delivery retries independently.
package orchestrator
