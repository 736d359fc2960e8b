package compliance

import "context"

// AuditOutcome is the tier-2 semantic auditor's judgement.
type AuditOutcome string

const (
	AuditPass    AuditOutcome = "pass"
	AuditFlagged AuditOutcome = "flagged"
	AuditBlocked AuditOutcome = "blocked"
)

// AuditResult carries the auditor's outcome plus its reasoning for logs.
type AuditResult struct {
	Outcome AuditOutcome
	RuleID  string
	Reason  string
}

// Auditor is the tier-2 semantic check, typically backed by an LLM call.
// Implementations should honor ctx cancellation; the guard treats any error
// or timeout as a flagged (not blocked) verdict.
type Auditor interface {
	Audit(ctx context.Context, text string) (AuditResult, error)
}

// AuditorFunc adapts a function to the Auditor interface.
type AuditorFunc func(ctx context.Context, text string) (AuditResult, error)

// Audit implements Auditor.
func (f AuditorFunc) Audit(ctx context.Context, text string) (AuditResult, error) {
	return f(ctx, text)
}

// NopAuditor passes everything. Used when no semantic audit backend is
// configured; tiers 0 and 1 still apply.
func NopAuditor() Auditor {
	return AuditorFunc(func(ctx context.Context, text string) (AuditResult, error) {
		return AuditResult{Outcome: AuditPass}, nil
	})
}
