package signal

import "regexp"

// phrasePattern pairs a compiled pattern with the strength it contributes to
// its category. Strengths accumulate per category and are clamped to 1.0.
type phrasePattern struct {
	id       string
	re       *regexp.Regexp
	strength float64
}

// Intent phrase tables. Phrases rather than bare keywords where possible so
// that "buy groceries" does not read as buyer intent.
var buyerIntentPatterns = []phrasePattern{
	{"buy-explicit", regexp.MustCompile(`(?i)\b(want|looking|ready|hoping|plan(ning)?)\s+to\s+buy\b`), 0.7},
	{"buy-house", regexp.MustCompile(`(?i)\bbuy(ing)?\s+(a\s+)?(house|home|property|condo|townhouse|duplex)\b`), 0.7},
	{"purchase", regexp.MustCompile(`(?i)\bpurchas(e|ing)\b`), 0.5},
	{"house-hunt", regexp.MustCompile(`(?i)\b(house|home)\s*[- ]?\s*(hunt(ing)?|search(ing)?|shopping)\b`), 0.6},
	{"first-time-buyer", regexp.MustCompile(`(?i)\bfirst[- ]time\s+(home\s*)?buyer\b`), 0.6},
	{"showing", regexp.MustCompile(`(?i)\b(schedule|book|set\s*up)\s+(a\s+)?(showing|tour|viewing)\b`), 0.5},
	{"listing-interest", regexp.MustCompile(`(?i)\b(saw|interested\s+in|love)\s+(the\s+|that\s+|your\s+)?(listing|property|house|home)\b`), 0.5},
	{"move-in", regexp.MustCompile(`(?i)\bmov(e|ing)\s+(in|to|into)\b`), 0.3},
}

var sellerIntentPatterns = []phrasePattern{
	{"sell-explicit", regexp.MustCompile(`(?i)\b(want|looking|ready|need|hoping|plan(ning)?)\s+to\s+sell\b`), 0.7},
	{"sell-house", regexp.MustCompile(`(?i)\bsell(ing)?\s+(my|our|the)\s+(house|home|property|condo|place)\b`), 0.7},
	{"list-house", regexp.MustCompile(`(?i)\blist(ing)?\s+(my|our|the)\s+(house|home|property|place)\b`), 0.6},
	{"home-worth", regexp.MustCompile(`(?i)\b(what('| i)?s|how\s+much\s+is)\s+(my|our|the)\s+(house|home|property|place)\s+worth\b`), 0.6},
	{"valuation", regexp.MustCompile(`(?i)\b(cma|comparative\s+market\s+analysis|home\s+valuation|market\s+value\s+of\s+(my|our))\b`), 0.5},
	{"downsizing", regexp.MustCompile(`(?i)\b(downsiz(e|ing)|relocat(e|ing)|empty\s+nest)\b`), 0.4},
	{"fsbo", regexp.MustCompile(`(?i)\b(fsbo|for\s+sale\s+by\s+owner)\b`), 0.4},
}

var urgencyPatterns = []phrasePattern{
	{"asap", regexp.MustCompile(`(?i)\b(asap|as\s+soon\s+as\s+possible|right\s+away|immediately|urgent(ly)?)\b`), 0.8},
	{"this-week", regexp.MustCompile(`(?i)\b(today|tonight|tomorrow|this\s+week(end)?)\b`), 0.6},
	{"this-month", regexp.MustCompile(`(?i)\b(this\s+month|next\s+(few\s+)?weeks?|within\s+(a\s+|the\s+)?month)\b`), 0.4},
	{"deadline", regexp.MustCompile(`(?i)\b(deadline|before\s+(school|summer|winter|the\s+end)|lease\s+(is\s+)?(up|ending|expir))\b`), 0.5},
}

var motivationPatterns = []phrasePattern{
	{"job-change", regexp.MustCompile(`(?i)\b(new\s+job|job\s+(transfer|relocation)|got\s+transferred)\b`), 0.6},
	{"life-event", regexp.MustCompile(`(?i)\b(divorce|inherit(ed|ance)|estate\s+sale|growing\s+family|new\s+baby)\b`), 0.6},
	{"financial", regexp.MustCompile(`(?i)\b(behind\s+on\s+payments|foreclosure|can('|no)?t\s+afford|cash\s+out)\b`), 0.7},
	{"tired-landlord", regexp.MustCompile(`(?i)\b(tired\s+of\s+(renting|tenants|being\s+a\s+landlord)|problem\s+tenants?)\b`), 0.5},
}

var preApprovalPattern = regexp.MustCompile(`(?i)\bpre[- ]?approv(ed|al)|pre[- ]?qualif(ied|ication)\b`)

var priceExpectationPattern = regexp.MustCompile(`(?i)\b(asking\s+price|i\s+want\s+at\s+least|won('|o)?t\s+take\s+less|my\s+price\s+is|expect(ing)?\s+to\s+get)\b`)

var engagementPattern = regexp.MustCompile(`\?`)

// budgetPattern matches explicit dollar figures: $600k, $450,000, 1.2m,
// "600 thousand". Group 1 is the number, group 2 the scale suffix.
var budgetPattern = regexp.MustCompile(`(?i)\$?\s*([0-9]{1,3}(?:,[0-9]{3})+|[0-9]+(?:\.[0-9]+)?)\s*(k|m|mm|thousand|million)?\b`)

// budgetContextPattern guards budget parsing: a bare number only counts as a
// budget when money context is nearby.
var budgetContextPattern = regexp.MustCompile(`(?i)\$|\b(budget|afford|price|spend|up\s+to|max(imum)?|range|approved\s+for)\b`)

// timelinePattern matches explicit horizons like "in 3 months", "within 60
// days", "next 2 weeks".
var timelinePattern = regexp.MustCompile(`(?i)\b(?:in|within|next)\s+([0-9]+)\s*(day|week|month)s?\b`)
