package advisor

import (
	"strings"
)

const (
	promptHeadlinesPerKind = 2
	newsSectionHeader      = "=== RECENT MARKET NEWS ==="
)

const insightSystemPrompt = `You are an expert financial advisor providing comprehensive, detailed qualitative portfolio analysis and investment insights.

Your role is to:
- Analyze portfolio data and provide thorough, actionable insights
- Identify key risks and opportunities with specific details
- Give comprehensive recommendations with clear rationale
- Consider market context and news with detailed analysis
- Explain what the data means in practical terms with specific examples

CRITICAL REQUIREMENTS:
- ALWAYS reference exact percentages and specific holdings in your analysis
- Distinguish between ETF-heavy portfolios (less risky concentration) and individual stock portfolios (riskier concentration)
- Use precise language: "extreme tech concentration (55%)" vs "moderate tech exposure (15%)"
- Reference specific tickers and weights when making recommendations
- Use appropriate adjustment granularity based on portfolio type
- Provide comprehensive analysis (200-400 words per section)
- Include specific scenarios, examples, and actionable insights

Portfolio Type Recognition:
- ETF-Heavy Portfolios: Use ±2% adjustments for diversification, recognize ETF benefits
- Individual Stock Portfolios: Use ±5% adjustments for diversification, emphasize concentration risks
- Mixed Portfolios: Balanced approach based on actual composition

Avoid:
- Quantitative scoring (that's handled by the backend)
- Complex mathematical calculations
- Vague statements without context or percentages
- Generic analysis that doesn't reference specific holdings

Be comprehensive, specific, actionable, and insightful. Help the investor understand their portfolio deeply and make informed decisions.`

const qualitativeAnalysisRequest = `=== QUALITATIVE ANALYSIS REQUEST ===
Based on the portfolio data above and recent market news, provide comprehensive qualitative insights and recommendations.

1. RISK ASSESSMENT:
   Analyze primary risk factors, concentration risks, volatility, market sensitivity, and specific scenarios.

2. DIVERSIFICATION ANALYSIS:
   Assess sector allocation, missing sectors, geographic exposure, asset class diversification, and recommendations.

3. GOAL ALIGNMENT:
   Evaluate how well the portfolio matches objectives, time horizon, risk tolerance, and income vs. growth goals.

4. PERFORMANCE ANALYSIS:
   Analyze expected performance, benchmark comparison, key drivers, and risk-adjusted return expectations.

5. MACRO ANALYSIS:
   Analyze economic trends, interest rates, inflation, geopolitical factors, and their portfolio impact.

6. MARKET CONTEXT:
   Assess current market conditions, sector trends, news affecting holdings, and market outlook.

7. ASSET RECOMMENDATIONS:
   Provide 3-5 specific asset recommendations with tickers, allocation percentages, and reasoning.

8. NEXT STEPS:
   Outline immediate actions, monitoring priorities, and strategic adjustments.

Format your response with these sections:
- SUMMARY (one line, max 80 characters)
- Risk Assessment
- Diversification Analysis
- Goal Alignment
- Performance Analysis
- Macro Analysis
- Market Context
- Asset Recommendations
- Next Steps

Use exact section headers. Each section should be 200-400 words with specific percentages and actionable insights.

=== ASSET RECOMMENDATIONS FORMAT ===
Provide 3-5 recommendations in this format:

1. [TICKER] - [ASSET NAME]
   Allocation: [X%] of portfolio
   Category: [ETF/Stock/Bond/Mutual Fund/REIT/Commodity/International/etc.]
   Reasoning: [Why this asset is recommended]
   Priority: [High/Medium/Low]
   Expected Impact: [How this will improve the portfolio]

[Continue for 3-5 total recommendations]

ASSET TYPE DIVERSITY REQUIREMENTS:
- Provide a MIX of different asset types, not just ETFs
- Include individual stocks for growth potential and specific sector exposure
- Include bonds for stability and income (especially for conservative clients)
- Include mutual funds for professional management and diversification
- Include REITs for real estate exposure and income
- Include commodities for inflation protection and diversification
- Consider the client's risk tolerance and goals when selecting asset types

ASSET TYPE EXAMPLES:
- ETFs: VTI, SPY, QQQ, VXUS, BND, VYM, VNQ, GLD, SLV
- Individual Stocks: AAPL, MSFT, JNJ, JPM, BRK.B, GOOGL, AMZN, TSLA, NVDA, META
- Bonds: TLT, AGG, BND, LQD, HYG, TIP, IEF
- Mutual Funds: VTSAX, VFIAX, VWELX, VWINX, VWNDX
- REITs: VNQ, O, PLD, AMT, CCI, SPG, EQR
- Commodities: GLD, SLV, DJP, USO, UNG, DBA

PRIORITY ASSIGNMENT GUIDELINES:
- HIGH PRIORITY: Addresses critical portfolio gaps, major diversification issues, or significant goal misalignment
- MEDIUM PRIORITY: Improves portfolio balance, addresses moderate gaps, or enhances existing strengths
- LOW PRIORITY: Nice-to-have additions, minor improvements, or opportunistic suggestions

IMPORTANT:
- Use real ticker symbols from any asset type (ETFs, stocks, bonds, mutual funds, REITs, etc.)
- Provide specific allocation percentages that add up to a reasonable amount (typically 5-20% total for new additions)
- Ensure diversity in asset types recommended (don't recommend only ETFs)

=== SCORE ADJUSTMENT REQUEST ===
Based on your qualitative analysis above, provide score adjustments in the EXACT format below:

PORTFOLIO TYPE CLASSIFICATION:
First, classify the portfolio type based on the holdings data:
- ETF-Heavy Portfolio: >50% of holdings are ETFs (SPY, VTI, QQQ, etc.)
- Individual Stock Portfolio: >50% of holdings are individual stocks
- Mixed Portfolio: Balanced mix of ETFs and individual stocks

ADJUSTMENT GUIDELINES BY PORTFOLIO TYPE:

ETF-Heavy Portfolios:
- Risk: Use ±1 (ETFs provide natural diversification)
- Diversification: Use ±2% (ETF concentration is less risky than stock concentration)
- Goal Alignment: Use ±2% (ETFs generally align well with goals)

Individual Stock Portfolios:
- Risk: Use ±1-2 (individual stocks have higher concentration risk)
- Diversification: Use ±5% (stock concentration requires larger adjustments)
- Goal Alignment: Use ±5% (stock selection may not align with goals)

Mixed Portfolios:
- Risk: Use ±1 (balanced approach)
- Diversification: Use ±2-5% (depends on actual composition)
- Goal Alignment: Use ±2-5% (depends on actual composition)

REASONING REQUIREMENTS:
- ALWAYS reference exact percentages: "Technology sector at 55.1%"
- ALWAYS reference specific holdings: "MSFT represents 37.7% of the portfolio"
- Distinguish between ETF concentration (less risky) and stock concentration (riskier)
- Reference specific tickers and weights when making adjustments

=== REQUIRED FORMAT - COPY EXACTLY ===
RISK SCORE ADJUSTMENT:
- Suggested adjustment: [Choose from: +2, +1, 0, -1, -2]
- Brief reasoning: [Explain why in 1-2 sentences with specific percentages]

DIVERSIFICATION ADJUSTMENT:
- Suggested adjustment: [Choose from: +10%, +5%, +2%, 0%, -2%, -5%, -10%]
- Brief reasoning: [Explain why in 1-2 sentences with specific percentages]

GOAL ALIGNMENT ADJUSTMENT:
- Suggested adjustment: [Choose from: +10%, +5%, +2%, 0%, -2%, -5%, -10%]
- Brief reasoning: [Explain why in 1-2 sentences with specific percentages]
=== END REQUIRED FORMAT ===

CRITICAL: For Goal Alignment and Diversification adjustments, you MUST include the % symbol (e.g., "0%" not "0"). For Risk adjustments, do NOT include % symbol.

IMPORTANT: You MUST use the exact format above. Do not use bold formatting, bullet points, or any other variations. Follow the template exactly as shown.
`

// BuildInsightPrompt assembles the user prompt sent to the language model.
func BuildInsightPrompt(preferences string, general, company []Headline) string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(preferences)
	sb.WriteString("\n\n")
	sb.WriteString(newsSection(general, company))
	sb.WriteString("\n")
	sb.WriteString(qualitativeAnalysisRequest)
	return sb.String()
}

func newsSection(general, company []Headline) string {
	var sb strings.Builder
	sb.WriteString(newsSectionHeader)
	sb.WriteString("\n")
	if len(general) > 0 {
		sb.WriteString("General: ")
		sb.WriteString(joinHeadlines(general, promptHeadlinesPerKind))
		sb.WriteString("\n")
	}
	if len(company) > 0 {
		sb.WriteString("Company: ")
		sb.WriteString(joinHeadlines(company, promptHeadlinesPerKind))
		sb.WriteString("\n")
	}
	return sb.String()
}

func joinHeadlines(items []Headline, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Headline)
	}
	return strings.Join(parts, "; ")
}
