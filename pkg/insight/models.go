package insight

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CreatedAtLayout is the timestamp format of InvestmentInsight.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05"

const defaultRiskLevel = "neutral"

// Canonical section keys.
const (
	KeyPortfolioInsights       = "portfolio_insights"
	KeyRiskAssessment          = "risk_assessment"
	KeyDiversificationAnalysis = "diversification_analysis"
	KeyGoalAlignment           = "goal_alignment"
	KeyPerformanceAnalysis     = "performance_analysis"
	KeyMacroAnalysis           = "macro_analysis"
	KeyMarketContext           = "market_context"
	KeyAssetRecommendations    = "asset_recommendations"
	KeySpecificRecommendations = "specific_recommendations"
	KeyNextSteps               = "next_steps"
)

// AdjustmentKind names one of the score adjustments a response may carry.
type AdjustmentKind string

const (
	AdjustmentRisk            AdjustmentKind = "risk"
	AdjustmentDiversification AdjustmentKind = "diversification"
	AdjustmentGoalAlignment   AdjustmentKind = "goalAlignment"
)

// Section is one named block of the model response.
type Section struct {
	Key        string   `json:"-"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	KeyMetrics []string `json:"keyMetrics"`
	RiskLevel  string   `json:"riskLevel"`
}

// Sections maps canonical keys to sections in order of first appearance.
type Sections = orderedmap.OrderedMap[string, Section]

// TextByKey maps canonical keys to section content in section order.
type TextByKey = orderedmap.OrderedMap[string, string]

// AssetRecommendation is one numbered recommendation from the recommendations section.
type AssetRecommendation struct {
	Ticker         string `json:"ticker"`
	AssetName      string `json:"assetName"`
	Allocation     string `json:"allocation"`
	Category       string `json:"category"`
	Reasoning      string `json:"reasoning"`
	Priority       string `json:"priority"`
	ExpectedImpact string `json:"expectedImpact"`
}

// ScoreAdjustment is a signed delta suggested by the model with its justification.
type ScoreAdjustment struct {
	Kind           AdjustmentKind `json:"-"`
	Adjustment     string         `json:"adjustment"`
	HasPercentSign bool           `json:"hasPercentSign"`
	Reasoning      string         `json:"reasoning"`
}

// StructuredInsight is the parsed form of one raw model response.
type StructuredInsight struct {
	MainRecommendations     []string                           `json:"mainRecommendations"`
	Sections                *Sections                          `json:"sections"`
	RawResponse             string                             `json:"rawResponse"`
	QualitativeInsights     *TextByKey                         `json:"qualitativeInsights"`
	ScoreAdjustments        map[AdjustmentKind]ScoreAdjustment `json:"scoreAdjustments"`
	SectionSpecificAnalysis *TextByKey                         `json:"sectionSpecificAnalysis"`
	AssetRecommendations    []AssetRecommendation              `json:"assetRecommendations"`
}

// InvestmentInsight is the record returned for one insight request.
type InvestmentInsight struct {
	Summary           string             `json:"summary"`
	AIGeneratedText   string             `json:"aiGeneratedText"`
	CreatedAt         string             `json:"createdAt"`
	StructuredInsight *StructuredInsight `json:"structuredInsight,omitempty"`
}

func newSection(key string, lines []string) Section {
	return Section{
		Key:        key,
		Title:      sectionTitle(key),
		Content:    joinLines(lines),
		KeyMetrics: []string{},
		RiskLevel:  defaultRiskLevel,
	}
}
