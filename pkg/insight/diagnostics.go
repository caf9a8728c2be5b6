package insight

import "strings"

// optionalSections may be left out of a well-formed response; every other
// canonical section is expected.
var optionalSections = map[string]bool{
	KeyPortfolioInsights:       true,
	KeyAssetRecommendations:    true,
	KeySpecificRecommendations: true,
}

func expectedSections() []string {
	keys := SectionKeys()
	expected := keys[:0]
	for _, key := range keys {
		if !optionalSections[key] {
			expected = append(expected, key)
		}
	}
	return expected
}

var adjustmentMarkers = map[AdjustmentKind]string{
	AdjustmentRisk:            "RISK SCORE ADJUSTMENT:",
	AdjustmentDiversification: "DIVERSIFICATION ADJUSTMENT:",
	AdjustmentGoalAlignment:   "GOAL ALIGNMENT ADJUSTMENT:",
}

// MissingSection is an expected section that was not parsed.
type MissingSection struct {
	Key string
	// MentionedInRaw is true when the section label still appears somewhere in the raw text.
	MentionedInRaw bool
}

// SectionStat is the word count of one parsed section.
type SectionStat struct {
	Key   string
	Words int
}

// Diagnostics describes how well a response matched the expected template.
type Diagnostics struct {
	Sections             []SectionStat
	// UnknownSections lists keys outside the canonical vocabulary, which only
	// appear when the structured insight was not produced by Segment.
	UnknownSections      []string
	MissingSections      []MissingSection
	ExtractedAdjustments []AdjustmentKind
	// UnparsedAdjustments lists kinds whose label is present but whose value did not parse.
	UnparsedAdjustments  []AdjustmentKind
	AssetRecommendations int
	MainRecommendations  int
}

// Diagnose inspects a parse result. It has no effect on the result itself.
func Diagnose(raw string, s StructuredInsight) Diagnostics {
	var d Diagnostics
	if s.Sections != nil {
		for pair := s.Sections.Oldest(); pair != nil; pair = pair.Next() {
			if !IsSectionKey(pair.Key) {
				d.UnknownSections = append(d.UnknownSections, pair.Key)
				continue
			}
			d.Sections = append(d.Sections, SectionStat{Key: pair.Key, Words: len(strings.Fields(pair.Value.Content))})
		}
	}

	upper := strings.ToUpper(raw)
	for _, key := range expectedSections() {
		if s.Sections != nil {
			if _, ok := s.Sections.Get(key); ok {
				continue
			}
		}
		label := strings.ToUpper(strings.ReplaceAll(key, "_", " "))
		d.MissingSections = append(d.MissingSections, MissingSection{
			Key:            key,
			MentionedInRaw: strings.Contains(upper, label),
		})
	}

	for _, kind := range AdjustmentKinds() {
		if _, ok := s.ScoreAdjustments[kind]; ok {
			d.ExtractedAdjustments = append(d.ExtractedAdjustments, kind)
			continue
		}
		if strings.Contains(raw, adjustmentMarkers[kind]) {
			d.UnparsedAdjustments = append(d.UnparsedAdjustments, kind)
		}
	}

	d.AssetRecommendations = len(s.AssetRecommendations)
	d.MainRecommendations = len(s.MainRecommendations)
	return d
}

// MissingKeys returns the keys of the missing sections.
func (d Diagnostics) MissingKeys() []string {
	keys := make([]string, 0, len(d.MissingSections))
	for _, m := range d.MissingSections {
		keys = append(keys, m.Key)
	}
	return keys
}
