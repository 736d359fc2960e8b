/*
Package types provides the shared type definitions for the LeadFlow
orchestrator.

types is the lowest-level package in the module and depends on nothing
internal. It defines the contracts shared across the signal, scoring,
compliance, handoff and orchestrator packages: contact state, conversation
turns, extracted signals, qualification scores, handoff events, compliance
verdicts, outbound CRM actions and the structured error type.
*/
package types
