// Package metrics computes annualized performance statistics over a net
// return series. All annualization uses 252 trading sessions per year and
// dispersion uses the sample standard deviation (n-1 denominator).
package metrics

import "math"

// SessionsPerYear is the annualization factor for daily session returns.
const SessionsPerYear = 252

// Summary bundles the headline statistics for one return series.
type Summary struct {
	Sessions         int     `json:"sessions"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	AnnualizedVol    float64 `json:"annualized_vol"`
	Sharpe           float64 `json:"sharpe"`
	Sortino          float64 `json:"sortino"`
	Calmar           float64 `json:"calmar"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	HitRate          float64 `json:"hit_rate"`
}

// Summarize computes the full statistics set over a net return series.
// An empty series yields the zero Summary.
func Summarize(returns []float64) Summary {
	if len(returns) == 0 {
		return Summary{}
	}
	return Summary{
		Sessions:         len(returns),
		TotalReturn:      TotalReturn(returns),
		AnnualizedReturn: AnnualizedReturn(returns),
		AnnualizedVol:    sampleStd(returns) * math.Sqrt(SessionsPerYear),
		Sharpe:           Sharpe(returns),
		Sortino:          Sortino(returns),
		Calmar:           Calmar(returns),
		MaxDrawdown:      MaxDrawdown(returns),
		HitRate:          hitRate(returns),
	}
}

// TotalReturn is the compounded return over the series.
func TotalReturn(returns []float64) float64 {
	wealth := 1.0
	for _, r := range returns {
		wealth *= 1 + r
	}
	return wealth - 1
}

// AnnualizedReturn compounds the mean session return to a yearly rate.
func AnnualizedReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return math.Pow(1+mean(returns), SessionsPerYear) - 1
}

// Sharpe is the annualized mean/std ratio of session returns. A series
// with zero dispersion has no meaningful Sharpe and returns 0.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	sd := sampleStd(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(SessionsPerYear)
}

// Sortino is the Sharpe variant penalizing only downside deviation.
// With no negative sessions the downside deviation is zero and Sortino
// returns 0 rather than infinity.
func Sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	dd := sampleStd(downside)
	if dd == 0 {
		return 0
	}
	return mean(returns) / dd * math.Sqrt(SessionsPerYear)
}

// Calmar is annualized return over the magnitude of max drawdown.
// A flat equity curve (zero drawdown) returns 0.
func Calmar(returns []float64) float64 {
	mdd := MaxDrawdown(returns)
	if mdd == 0 {
		return 0
	}
	return AnnualizedReturn(returns) / math.Abs(mdd)
}

// MaxDrawdown is the worst peak-to-trough decline of the compounded
// equity curve, expressed as a non-positive fraction (e.g. -0.25 for a
// 25% drawdown). A series that never declines returns 0.
func MaxDrawdown(returns []float64) float64 {
	wealth := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		dd := wealth/peak - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

// sampleStd uses the n-1 denominator.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	s := 0.0
	for _, x := range xs {
		d := x - m
		s += d * d
	}
	return math.Sqrt(s / float64(len(xs)-1))
}

func hitRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}
