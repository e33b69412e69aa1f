package analytics

import (
	"github.com/samber/lo"

	"retailsmart/internal/config"
	"retailsmart/pkg/contracts/domain"
)

// Gauge band names
const (
	BandLow      = "low"
	BandElevated = "elevated"
	BandHigh     = "high"
)

// GaugeBands are the colored ranges of the churn gauge
var GaugeBands = []domain.GaugeBand{
	{Name: BandLow, From: 0, To: config.GaugeReference, Color: config.ColorBandLow},
	{Name: BandElevated, From: config.GaugeReference, To: config.GaugeThreshold, Color: config.ColorBandElevated},
	{Name: BandHigh, From: config.GaugeThreshold, To: config.GaugeAxisMax, Color: config.ColorBandHigh},
}

// ChurnGauge computes the share of customers whose churn value exceeds
// riskThreshold and places it on the gauge
func ChurnGauge(scores []domain.ChurnScore, column string, riskThreshold float64) domain.ChurnGauge {
	highRisk := lo.CountBy(scores, func(s domain.ChurnScore) bool { return s.Probability > riskThreshold })
	pct := ratio(float64(highRisk), float64(len(scores))) * 100

	bands := make([]domain.GaugeBand, len(GaugeBands))
	copy(bands, GaugeBands)

	return domain.ChurnGauge{
		Column:           column,
		Customers:        len(scores),
		HighRisk:         highRisk,
		HighRiskPct:      pct,
		Reference:        config.GaugeReference,
		Delta:            pct - config.GaugeReference,
		AxisMax:          config.GaugeAxisMax,
		Threshold:        config.GaugeThreshold,
		ExceedsThreshold: pct > config.GaugeThreshold,
		Band:             bandFor(pct),
		Bands:            bands,
		BarColor:         config.ColorGaugeBar,
		ThresholdColor:   config.ColorGaugeThreshold,
	}
}

func bandFor(pct float64) string {
	switch {
	case pct < config.GaugeReference:
		return BandLow
	case pct < config.GaugeThreshold:
		return BandElevated
	default:
		return BandHigh
	}
}
