package analysis

import (
	"errors"
	"time"

	"github.com/sentinelmon/sentinel/internal/fetch"
)

// minForecastPoints is the smallest sample the regression accepts.
const minForecastPoints = 10

// ErrInsufficientData is returned when the fiscal history is too short to
// regress.
var ErrInsufficientData = errors.New("analysis: insufficient data points for forecast")

const daysPerYear = 365.25

// Forecast is the day-zero projection: when the interest/revenue ratio hits
// 1.0, i.e. interest consumes all tax revenue.
type Forecast struct {
	// YearsRemaining until day zero; zero when already passed.
	YearsRemaining float64
	// Date is the projected day-zero date.
	Date time.Time
	// Improving is set when the fitted slope is non-positive: the trend
	// is moving away from day zero and no date can be projected.
	Improving bool
	// AlreadyPassed is set when the projection lands in the past.
	AlreadyPassed bool
}

// RatioSeries divides interest payments by tax receipts pointwise, matching
// observations by timestamp. Dates present in only one input are dropped.
func RatioSeries(interest, receipts []fetch.Point) []fetch.Point {
	byDate := make(map[time.Time]float64, len(receipts))
	for _, p := range receipts {
		if p.Value != 0 {
			byDate[p.Time] = p.Value
		}
	}

	out := make([]fetch.Point, 0, len(interest))
	for _, p := range interest {
		if rev, ok := byDate[p.Time]; ok {
			out = append(out, fetch.Point{Time: p.Time, Value: p.Value / rev})
		}
	}
	return out
}

// DayZeroForecast fits a least-squares line through the ratio history and
// solves for ratio = 1.0. Points must be sorted by time ascending, as the
// series store guarantees.
func DayZeroForecast(ratios []fetch.Point, now time.Time) (Forecast, error) {
	if len(ratios) < minForecastPoints {
		return Forecast{}, ErrInsufficientData
	}

	// Regress ratio against time in fractional days since the first point.
	// Small x values keep the normal equations well-conditioned.
	origin := ratios[0].Time
	n := float64(len(ratios))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range ratios {
		x := p.Time.Sub(origin).Hours() / 24
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Forecast{}, ErrInsufficientData
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	if slope <= 0 {
		return Forecast{Improving: true}, nil
	}

	// Solve 1.0 = slope*x + intercept for x days past origin.
	dayZeroOffset := (1.0 - intercept) / slope
	date := origin.Add(time.Duration(dayZeroOffset * 24 * float64(time.Hour)))

	yearsRemaining := date.Sub(now).Hours() / 24 / daysPerYear
	if yearsRemaining < 0 {
		return Forecast{Date: date, AlreadyPassed: true}, nil
	}
	return Forecast{YearsRemaining: yearsRemaining, Date: date}, nil
}
