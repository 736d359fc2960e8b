// Package compliance implements the tiered outbound-message guard.
//
// Every reply passes three tiers in order: a length ceiling (tier 0), a
// fair-housing pattern match (tier 1), and an LLM-backed semantic audit
// (tier 2). Tiers 0 and 1 short-circuit on a hit; tier 2 fails open to a
// flagged verdict when the auditor is unavailable, so a degraded audit
// service never blocks all traffic and never silently passes it either.
package compliance
