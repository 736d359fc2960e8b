package compliance

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/types"
)

// Guard runs outbound text through the three compliance tiers.
// Check never returns an error: every failure mode resolves to a verdict.
type Guard struct {
	maxLength    int
	rules        []patternRule
	auditor      Auditor
	auditTimeout time.Duration
	logger       *zap.Logger
}

// Config configures a Guard.
type Config struct {
	// MaxLength is the tier-0 character ceiling (runes, not bytes).
	MaxLength int `yaml:"max_length" json:"max_length"`
	// AuditTimeout bounds the tier-2 call; on expiry the verdict degrades
	// to flagged.
	AuditTimeout time.Duration `yaml:"audit_timeout" json:"audit_timeout"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxLength:    2000,
		AuditTimeout: 5 * time.Second,
	}
}

// NewGuard creates a guard. A nil auditor disables tier 2 (equivalent to
// NopAuditor); a nil logger is replaced with a nop logger.
func NewGuard(cfg Config, auditor Auditor, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auditor == nil {
		auditor = NopAuditor()
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultConfig().MaxLength
	}
	if cfg.AuditTimeout <= 0 {
		cfg.AuditTimeout = DefaultConfig().AuditTimeout
	}
	return &Guard{
		maxLength:    cfg.MaxLength,
		rules:        fairHousingRules,
		auditor:      auditor,
		auditTimeout: cfg.AuditTimeout,
		logger:       logger.With(zap.String("component", "compliance_guard")),
	}
}

// Check runs text through tier 0, tier 1 and tier 2 in order. Tier 0 and
// tier 1 hits short-circuit. A tier-2 error or timeout degrades to flagged
// rather than failing the pipeline or silently passing.
func (g *Guard) Check(ctx context.Context, text string) types.ComplianceVerdict {
	// Tier 0: length ceiling. Fast reject, no further tiers.
	if n := utf8.RuneCountInString(text); n > g.maxLength {
		g.logger.Warn("outbound message rejected by length guard",
			zap.Int("length", n), zap.Int("max_length", g.maxLength))
		return types.ComplianceVerdict{
			Status: types.ComplianceBlocked,
			Tier:   0,
			RuleID: "length-ceiling",
			Reason: fmt.Sprintf("message length %d exceeds ceiling %d", n, g.maxLength),
		}
	}

	// Tier 1: fair-housing pattern rules. Any match blocks.
	for _, rule := range g.rules {
		if rule.re.MatchString(text) {
			g.logger.Warn("outbound message blocked by pattern guard",
				zap.String("rule_id", rule.id), zap.String("category", rule.category))
			return types.ComplianceVerdict{
				Status: types.ComplianceBlocked,
				Tier:   1,
				RuleID: rule.id,
				Reason: "matched " + rule.category + " pattern",
			}
		}
	}

	// Tier 2: semantic audit with a bounded timeout. Auditor failure must
	// degrade, not halt: verdict becomes flagged and the turn completes.
	auditCtx, cancel := context.WithTimeout(ctx, g.auditTimeout)
	defer cancel()

	result, err := g.auditor.Audit(auditCtx, text)
	if err != nil {
		g.logger.Warn("semantic audit unavailable, failing open to flagged", zap.Error(err))
		return types.ComplianceVerdict{
			Status: types.ComplianceFlagged,
			Tier:   2,
			RuleID: "audit-unavailable",
			Reason: fmt.Sprintf("semantic audit failed: %v", err),
		}
	}

	switch result.Outcome {
	case AuditBlocked:
		g.logger.Warn("outbound message blocked by semantic audit",
			zap.String("rule_id", result.RuleID), zap.String("reason", result.Reason))
		return types.ComplianceVerdict{Status: types.ComplianceBlocked, Tier: 2, RuleID: result.RuleID, Reason: result.Reason}
	case AuditFlagged:
		g.logger.Info("outbound message flagged by semantic audit",
			zap.String("rule_id", result.RuleID), zap.String("reason", result.Reason))
		return types.ComplianceVerdict{Status: types.ComplianceFlagged, Tier: 2, RuleID: result.RuleID, Reason: result.Reason}
	default:
		return types.ComplianceVerdict{Status: types.CompliancePass, Tier: 2}
	}
}
