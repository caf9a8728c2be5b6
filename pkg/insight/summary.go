package insight

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSummaryLength is the maximum summary length in characters.
const MaxSummaryLength = 80

const (
	summaryLookahead  = 4
	summaryScanWindow = 10
)

var summarySkipPrefixes = []string{
	"PORTFOLIO", "MARKET", "RISK", "DIVERSIFICATION", "GOAL", "SPECIFIC", "NEXT", "SCORE",
}

var summaryKeywords = []string{"review", "consider", "recommend", "risk", "diversification"}

// ExtractSummary picks a one-line headline for raw. It never returns an empty string.
func ExtractSummary(raw string, holdings []string) string {
	lines := strings.Split(raw, "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !hasPrefixFold(line, summaryMarker) {
			continue
		}
		if hasPrefixFold(line, summaryMarker+":") {
			if inline := strings.TrimSpace(line[len(summaryMarker)+1:]); inline != "" {
				return truncateRunes(inline, MaxSummaryLength)
			}
		}
		if next, ok := summaryFollowingLine(lines, i); ok {
			return truncateRunes(next, MaxSummaryLength)
		}
	}

	for i, line := range lines {
		if i >= summaryScanWindow {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) > MaxSummaryLength {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsUpper(first) {
			continue
		}
		if containsAny(strings.ToLower(line), summaryKeywords) {
			return line
		}
	}

	return truncateRunes(fmt.Sprintf("Portfolio analysis: %d holdings reviewed", len(holdings)), MaxSummaryLength)
}

func summaryFollowingLine(lines []string, markerIndex int) (string, bool) {
	end := min(markerIndex+1+summaryLookahead, len(lines))
	for j := markerIndex + 1; j < end; j++ {
		candidate := strings.TrimSpace(lines[j])
		if candidate == "" || hasAnyPrefixFold(candidate, summarySkipPrefixes) {
			continue
		}
		return candidate, true
	}
	return "", false
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
