package signal

import (
	"strconv"
	"strings"

	"github.com/jorgeai/leadflow/types"
)

// Extractor computes a SignalSet from one message plus its recent history.
// The zero-configured extractor built by NewExtractor is safe for concurrent
// use; all pattern tables are compiled once at package init.
type Extractor struct {
	// historyWindow caps how many prior turns contribute aggregated signal.
	historyWindow int
	// historyDecay discounts signal contributed by older turns.
	historyDecay float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHistoryWindow caps the number of prior turns considered.
func WithHistoryWindow(n int) Option {
	return func(e *Extractor) { e.historyWindow = n }
}

// NewExtractor creates an extractor with the default 10-turn window.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{historyWindow: 10, historyDecay: 0.5}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract computes signals for text in the context of history. History is
// ordered oldest first; only inbound turns contribute. Unmatched or empty
// text yields a zero SignalSet, never an error.
func (e *Extractor) Extract(text string, history []types.ConversationTurn) types.SignalSet {
	current := extractOne(text)

	// Aggregate prior inbound turns at a discount so that intent expressed
	// earlier in the conversation still counts toward a handoff, while the
	// current turn dominates.
	start := 0
	if len(history) > e.historyWindow {
		start = len(history) - e.historyWindow
	}
	for _, turn := range history[start:] {
		if turn.Direction != types.DirectionInbound {
			continue
		}
		var past types.SignalSet
		if turn.Signals != nil {
			past = *turn.Signals
		} else {
			past = extractOne(turn.Text)
		}
		current.BuyerIntent = clamp01(current.BuyerIntent + past.BuyerIntent*e.historyDecay)
		current.SellerIntent = clamp01(current.SellerIntent + past.SellerIntent*e.historyDecay)
		current.Motivation = clamp01(current.Motivation + past.Motivation*e.historyDecay)
		if past.BudgetMentioned && !current.BudgetMentioned {
			current.BudgetMentioned = true
			current.BudgetAmount = past.BudgetAmount
		}
		if past.PreApproved {
			current.PreApproved = true
		}
		if past.PriceExpectation {
			current.PriceExpectation = true
		}
	}

	return current
}

// ExtractTurn computes signals for a single message with no history
// contribution. Callers that persist per-turn signals should store this
// rather than the aggregated Extract result, so a later aggregation over
// history never folds in an earlier aggregate.
func (e *Extractor) ExtractTurn(text string) types.SignalSet {
	return extractOne(text)
}

// extractOne runs the pattern tables over a single message.
func extractOne(text string) types.SignalSet {
	var s types.SignalSet
	text = strings.TrimSpace(text)
	if text == "" {
		return s
	}

	s.BuyerIntent, s.MatchedKeywords = matchCategory(text, buyerIntentPatterns, s.MatchedKeywords)
	s.SellerIntent, s.MatchedKeywords = matchCategory(text, sellerIntentPatterns, s.MatchedKeywords)
	s.Urgency, s.MatchedKeywords = matchCategory(text, urgencyPatterns, s.MatchedKeywords)
	s.Motivation, s.MatchedKeywords = matchCategory(text, motivationPatterns, s.MatchedKeywords)

	if preApprovalPattern.MatchString(text) {
		s.PreApproved = true
		s.MatchedKeywords = append(s.MatchedKeywords, "pre-approval")
	}
	if priceExpectationPattern.MatchString(text) {
		s.PriceExpectation = true
		s.MatchedKeywords = append(s.MatchedKeywords, "price-expectation")
	}

	if amount, ok := extractBudget(text); ok {
		s.BudgetMentioned = true
		s.BudgetAmount = amount
	}
	if days, ok := extractTimelineDays(text); ok {
		s.TimelineDays = days
		// A concrete short timeline is itself an urgency cue.
		if days <= 30 {
			s.Urgency = clamp01(s.Urgency + 0.4)
		}
	}

	s.Engagement = engagementScore(text)
	return s
}

// matchCategory accumulates strengths of all patterns that fire, clamped to 1.
func matchCategory(text string, patterns []phrasePattern, matched []string) (float64, []string) {
	var total float64
	for _, p := range patterns {
		if p.re.MatchString(text) {
			total += p.strength
			matched = append(matched, p.id)
		}
	}
	return clamp01(total), matched
}

// extractBudget parses the largest plausible dollar figure in text. Figures
// without money context nearby are ignored so that "3 bedrooms" never reads
// as a budget.
func extractBudget(text string) (float64, bool) {
	if !budgetContextPattern.MatchString(text) {
		return 0, false
	}

	var best float64
	for _, m := range budgetPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k", "thousand":
			n *= 1_000
		case "m", "mm", "million":
			n *= 1_000_000
		}
		// Plausible residential price band; discards ZIP codes, bedroom
		// counts and phone fragments.
		if n >= 10_000 && n <= 50_000_000 && n > best {
			best = n
		}
	}
	return best, best > 0
}

// extractTimelineDays returns the shortest explicit timeline in days.
func extractTimelineDays(text string) (int, bool) {
	shortest := 0
	for _, m := range timelinePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		days := n
		switch strings.ToLower(m[2]) {
		case "week":
			days = n * 7
		case "month":
			days = n * 30
		}
		if shortest == 0 || days < shortest {
			shortest = days
		}
	}
	return shortest, shortest > 0
}

// engagementScore estimates commitment from message effort: questions asked
// and message length.
func engagementScore(text string) float64 {
	var score float64
	questions := len(engagementPattern.FindAllString(text, -1))
	score += float64(questions) * 0.25

	words := len(strings.Fields(text))
	switch {
	case words >= 40:
		score += 0.5
	case words >= 15:
		score += 0.3
	case words >= 5:
		score += 0.1
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
