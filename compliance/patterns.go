package compliance

import "regexp"

// patternRule is one tier-1 rule. Any match blocks the message outright.
type patternRule struct {
	id       string
	category string
	re       *regexp.Regexp
}

// Fair-housing pattern rules. These cover the explicit phrasings a generated
// reply must never contain: protected-class references tied to housing,
// exclusionary language, and steering. Subtler violations are tier 2's job.
var fairHousingRules = []patternRule{
	{
		id:       "FHA-001",
		category: "protected_class_reference",
		re:       regexp.MustCompile(`(?i)\b(white|black|asian|hispanic|latino)\s+(neighborhood|area|community|people|families)\b`),
	},
	{
		id:       "FHA-002",
		category: "religious_preference",
		re:       regexp.MustCompile(`(?i)\b(christian|jewish|muslim|catholic|hindu)\s+(neighborhood|community|families|only)\b`),
	},
	{
		id:       "FHA-003",
		category: "familial_status",
		re:       regexp.MustCompile(`(?i)\b(no\s+(kids|children)|adults?\s+only|no\s+families|perfect\s+for\s+(singles|couples\s+without\s+children))\b`),
	},
	{
		id:       "FHA-004",
		category: "exclusionary_language",
		re:       regexp.MustCompile(`(?i)\b(restricted|exclusive|private)\s+community\b`),
	},
	{
		id:       "FHA-005",
		category: "disability",
		re:       regexp.MustCompile(`(?i)\b(no\s+wheelchairs?|not\s+(suitable|good)\s+for\s+(the\s+)?(disabled|handicapped))\b`),
	},
	{
		id:       "FHA-006",
		category: "national_origin",
		re:       regexp.MustCompile(`(?i)\b(english[- ]speak(ers|ing)\s+only|no\s+(immigrants|foreigners))\b`),
	},
	{
		id:       "FHA-007",
		category: "steering",
		re:       regexp.MustCompile(`(?i)\byou\s+(people|folks)\s+(would|will)\s+(fit|feel)\s+(in\s+)?better\b`),
	},
}
