// Package analysis holds the pure risk formulas computed over the cache
// engine's envelopes: debt-service ratios, yield spreads, and alert statuses.
// Nothing here performs I/O or feeds back into caching policy; the package is
// strictly a downstream consumer of resolved values.
package analysis

import "math"

// Status is the alert level for a computed indicator.
type Status int

const (
	StatusSafe Status = iota
	StatusWarning
	StatusCritical
)

// String returns the status label used in panels and plain output.
func (s Status) String() string {
	switch s {
	case StatusSafe:
		return "SAFE"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Alert thresholds. The interest/revenue ratio crossing 20% is the doom-loop
// signal: debt service compounding faster than revenue can offset.
const (
	InterestRevenueWarning  = 0.18
	InterestRevenueCritical = 0.20

	US10YWarning   = 4.5
	US10YVigilante = 5.0

	USDZARWarning  = 18.0
	USDZARCritical = 19.0

	DebtGDPDevelopedWarning  = 100.0
	DebtGDPDevelopedCritical = 120.0
	DebtGDPEmergingWarning   = 70.0
	DebtGDPEmergingCritical  = 90.0
)

// InterestRevenueRatio returns annual interest expense over annual tax
// revenue as a decimal (0.18 means 18%). Infinite when revenue is zero.
func InterestRevenueRatio(interestExpense, taxRevenue float64) float64 {
	if taxRevenue == 0 {
		return math.Inf(1)
	}
	return interestExpense / taxRevenue
}

// DebtToGDPRatio returns total debt over GDP as a percentage.
func DebtToGDPRatio(totalDebt, gdp float64) float64 {
	if gdp == 0 {
		return math.Inf(1)
	}
	return (totalDebt / gdp) * 100
}

// GrowthSpread returns r − g in percentage points. Positive means the debt
// stock grows faster than the economy that services it.
func GrowthSpread(bondYield, gdpGrowth float64) float64 {
	return bondYield - gdpGrowth
}

// RealYield returns nominal yield minus inflation.
func RealYield(nominalYield, inflationRate float64) float64 {
	return nominalYield - inflationRate
}

// YieldSpread returns the long-minus-short curve spread in percentage points.
func YieldSpread(longYield, shortYield float64) float64 {
	return longYield - shortYield
}

// DailyInterestCost approximates the daily cost of carrying totalDebt at
// avgRate percent, in the same unit as totalDebt.
func DailyInterestCost(totalDebt, avgRate float64) float64 {
	return (totalDebt * (avgRate / 100.0)) / 365.0
}

// MarketRealYield returns the 10Y nominal yield minus breakeven inflation:
// the real return investors currently demand.
func MarketRealYield(nominal10Y, breakeven float64) float64 {
	return nominal10Y - breakeven
}

// FedRateExpectation decomposes the 10Y yield into the implied policy-rate
// path by removing the term premium.
func FedRateExpectation(nominal10Y, termPremium float64) float64 {
	return nominal10Y - termPremium
}

// InterestRatioStatus grades the interest/revenue ratio.
func InterestRatioStatus(ratio float64) Status {
	switch {
	case ratio >= InterestRevenueCritical:
		return StatusCritical
	case ratio >= InterestRevenueWarning:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// GrowthSpreadStatus grades r − g: any positive spread is critical.
func GrowthSpreadStatus(spread float64) Status {
	if spread > 0 {
		return StatusCritical
	}
	return StatusSafe
}

// YieldCurveStatus grades the curve spread: inversion is critical.
func YieldCurveStatus(spread float64) Status {
	if spread < 0 {
		return StatusCritical
	}
	return StatusSafe
}

// DebtGDPStatus grades a debt/GDP percentage against developed-market or
// emerging-market thresholds.
func DebtGDPStatus(ratio float64, emergingMarket bool) Status {
	warn, crit := DebtGDPDevelopedWarning, DebtGDPDevelopedCritical
	if emergingMarket {
		warn, crit = DebtGDPEmergingWarning, DebtGDPEmergingCritical
	}
	switch {
	case ratio >= crit:
		return StatusCritical
	case ratio >= warn:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// BondVigilante reports a yield spike past the attack threshold.
func BondVigilante(bondYield float64) bool {
	return bondYield > US10YVigilante
}

// CurrencyRisk reports a currency past the crisis threshold.
func CurrencyRisk(usdZAR float64) bool {
	return usdZAR > USDZARCritical
}
