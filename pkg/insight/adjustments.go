package insight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type adjustmentPattern struct {
	kind    AdjustmentKind
	re      *regexp.Regexp
	percent bool
}

// Each pattern ends right before the reasoning text; the reasoning is cut by reasoningEnd.
var adjustmentPatterns = []adjustmentPattern{
	{
		kind: AdjustmentRisk,
		re:   regexp.MustCompile(`(?is)RISK\s+SCORE\s+ADJUSTMENT:.*?Suggested\s+adjustment:\s*([+-]?\d+).*?Brief\s+reasoning:\s*`),
	},
	{
		kind:    AdjustmentDiversification,
		re:      regexp.MustCompile(`(?is)DIVERSIFICATION\s+ADJUSTMENT:.*?Suggested\s+adjustment:\s*([+-]?\d+%?).*?Brief\s+reasoning:\s*`),
		percent: true,
	},
	{
		kind:    AdjustmentGoalAlignment,
		re:      regexp.MustCompile(`(?is)GOAL\s+ALIGNMENT\s+ADJUSTMENT:.*?Suggested\s+adjustment:\s*([+-]?\d+%?).*?Brief\s+reasoning:\s*`),
		percent: true,
	},
}

// AdjustmentKinds lists the adjustment kinds in extraction order.
func AdjustmentKinds() []AdjustmentKind {
	kinds := make([]AdjustmentKind, 0, len(adjustmentPatterns))
	for _, p := range adjustmentPatterns {
		kinds = append(kinds, p.kind)
	}
	return kinds
}

// ExtractScoreAdjustments finds the first adjustment of each kind anywhere in raw.
// Kinds without a match are absent from the result.
func ExtractScoreAdjustments(raw string) map[AdjustmentKind]ScoreAdjustment {
	adjustments := make(map[AdjustmentKind]ScoreAdjustment, len(adjustmentPatterns))
	for _, p := range adjustmentPatterns {
		loc := p.re.FindStringSubmatchIndex(raw)
		if loc == nil {
			continue
		}
		value := raw[loc[2]:loc[3]]
		if p.percent && !strings.HasSuffix(value, "%") {
			value += "%"
		}
		rest := raw[loc[1]:]
		adjustments[p.kind] = ScoreAdjustment{
			Kind:           p.kind,
			Adjustment:     value,
			HasPercentSign: p.percent,
			Reasoning:      strings.TrimSpace(rest[:reasoningEnd(rest)]),
		}
	}
	return adjustments
}

// reasoningEnd returns the offset of the first blank line or newline followed by an
// uppercase letter, or len(s).
func reasoningEnd(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		next := s[i+1]
		if next == '\n' || (next >= 'A' && next <= 'Z') {
			return i
		}
	}
	return len(s)
}

// Delta returns the adjustment as a number, without sign prefix or percent suffix.
func (a ScoreAdjustment) Delta() (decimal.Decimal, error) {
	value := strings.TrimSuffix(strings.TrimPrefix(a.Adjustment, "+"), "%")
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s adjustment %q: %w", a.Kind, a.Adjustment, err)
	}
	return d, nil
}
