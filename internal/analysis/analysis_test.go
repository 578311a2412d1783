package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterestRevenueRatio(t *testing.T) {
	assert.InDelta(t, 0.18, InterestRevenueRatio(900, 5000), 1e-9)
	assert.True(t, math.IsInf(InterestRevenueRatio(900, 0), 1))
}

func TestDebtToGDPRatio(t *testing.T) {
	assert.InDelta(t, 123.5, DebtToGDPRatio(1235, 1000), 1e-9)
	assert.True(t, math.IsInf(DebtToGDPRatio(1, 0), 1))
}

func TestSpreadsAndYields(t *testing.T) {
	assert.InDelta(t, 2.0, GrowthSpread(4.5, 2.5), 1e-9)
	assert.InDelta(t, 1.5, RealYield(4.5, 3.0), 1e-9)
	assert.InDelta(t, -0.5, YieldSpread(4.5, 5.0), 1e-9)
	assert.InDelta(t, 2.0, MarketRealYield(4.5, 2.5), 1e-9)
	assert.InDelta(t, 3.8, FedRateExpectation(4.5, 0.7), 1e-9)
}

func TestDailyInterestCost(t *testing.T) {
	// 36,000bn at 4.5%: ~4.44bn per day.
	got := DailyInterestCost(36000, 4.5)
	assert.InDelta(t, 36000*0.045/365, got, 1e-9)
}

func TestInterestRatioStatus(t *testing.T) {
	assert.Equal(t, StatusSafe, InterestRatioStatus(0.10))
	assert.Equal(t, StatusWarning, InterestRatioStatus(0.18))
	assert.Equal(t, StatusWarning, InterestRatioStatus(0.19))
	assert.Equal(t, StatusCritical, InterestRatioStatus(0.20))
	assert.Equal(t, StatusCritical, InterestRatioStatus(0.35))
}

func TestGrowthSpreadStatus(t *testing.T) {
	assert.Equal(t, StatusSafe, GrowthSpreadStatus(-1.0))
	assert.Equal(t, StatusSafe, GrowthSpreadStatus(0))
	assert.Equal(t, StatusCritical, GrowthSpreadStatus(0.1))
}

func TestYieldCurveStatus(t *testing.T) {
	assert.Equal(t, StatusCritical, YieldCurveStatus(-0.2))
	assert.Equal(t, StatusSafe, YieldCurveStatus(0.3))
}

func TestDebtGDPStatus(t *testing.T) {
	assert.Equal(t, StatusSafe, DebtGDPStatus(80, false))
	assert.Equal(t, StatusWarning, DebtGDPStatus(105, false))
	assert.Equal(t, StatusCritical, DebtGDPStatus(125, false))

	assert.Equal(t, StatusSafe, DebtGDPStatus(60, true))
	assert.Equal(t, StatusWarning, DebtGDPStatus(75, true))
	assert.Equal(t, StatusCritical, DebtGDPStatus(95, true))
}

func TestFlagChecks(t *testing.T) {
	assert.False(t, BondVigilante(4.9))
	assert.True(t, BondVigilante(5.1))
	assert.False(t, CurrencyRisk(18.5))
	assert.True(t, CurrencyRisk(19.5))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "SAFE", StatusSafe.String())
	assert.Equal(t, "WARNING", StatusWarning.String())
	assert.Equal(t, "CRITICAL", StatusCritical.String())
}
