package insight

const sampleResponse = `SUMMARY: Tech-heavy portfolio needs bond exposure and broader diversification

RISK ASSESSMENT:
Technology sector at 55.1% creates concentration risk.
MSFT represents 37.7% of the portfolio.

DIVERSIFICATION ANALYSIS:
Missing fixed income and real estate exposure.

GOAL ALIGNMENT:
Growth objectives are partially met.

PERFORMANCE ANALYSIS:
Expected returns track the Nasdaq-100.

MACRO ANALYSIS:
Rates remain elevated.

MARKET CONTEXT:
AI spending supports large-cap tech.

ASSET RECOMMENDATIONS:
1. [BND] - Vanguard Total Bond Market ETF
   Allocation: 8% of portfolio
   Category: Bond
   Reasoning: Adds stability
   Priority: High
   Expected Impact: Reduces volatility
2. JNJ - Johnson & Johnson
   Allocation: 5%
   Category: Stock
   Priority: Medium

NEXT STEPS:
- Rebalance technology below 40%
• Add fixed income
* Review quarterly
Monitor rates closely

=== SCORE ADJUSTMENT REQUEST ===
PORTFOLIO TYPE CLASSIFICATION:
Mixed Portfolio

RISK SCORE ADJUSTMENT:
- Suggested adjustment: +1
- Brief reasoning: Technology sector at 55.1% with MSFT at 37.7%

DIVERSIFICATION ADJUSTMENT:
- Suggested adjustment: -5%
- Brief reasoning: No bonds or REITs in the portfolio

GOAL ALIGNMENT ADJUSTMENT:
- Suggested adjustment: 0
- Brief reasoning: aligns well with goals`
