// Package charts renders dashboard charts as PNG images.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"retailsmart/internal/config"
	"retailsmart/pkg/contracts/domain"
)

// Chart names served over HTTP
const (
	ChartTrend      = "trend"
	ChartCategories = "categories"
	ChartSegments   = "segments"
	ChartForecast   = "forecast"
)

// Names lists every chart the renderer knows
var Names = []string{ChartTrend, ChartCategories, ChartSegments, ChartForecast}

// ErrNoData is returned when a chart has nothing to plot
var ErrNoData = errors.New("no data to chart")

// Default image size
const (
	DefaultWidth  = 900
	DefaultHeight = 400
)

// Renderer draws charts at a fixed size
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer. Non-positive sizes use the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Trend draws monthly revenue as a time series
func (r *Renderer) Trend(w io.Writer, points []domain.MonthlyRevenue) error {
	if len(points) == 0 {
		return ErrNoData
	}
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.Month, p.Revenue
	}
	return r.timeSeries(w, "Monthly Revenue Trend", "Revenue", config.ColorTrend, "2006-01", xs, ys)
}

// Forecast draws the forecasted revenue series
func (r *Renderer) Forecast(w io.Writer, points []domain.ForecastPoint) error {
	if len(points) == 0 {
		return ErrNoData
	}
	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.Date, p.ForecastedRevenue
	}
	return r.timeSeries(w, "Revenue Forecast", "Forecasted Revenue", config.ColorForecast, "2006-01-02", xs, ys)
}

// Categories draws the category mix as a pie
func (r *Renderer) Categories(w io.Writer, mix []domain.CategoryRevenue) error {
	values := make([]chart.Value, 0, len(mix))
	for _, c := range mix {
		if c.Revenue <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: c.Revenue,
			Label: fmt.Sprintf("%s (%.1f%%)", c.Category, c.Share),
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Title:  "Revenue by Category",
		Width:  r.height,
		Height: r.height,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}

// Segments draws customers per segment as bars
func (r *Renderer) Segments(w io.Writer, segments []domain.ClusterSummary) error {
	bars := make([]chart.Value, 0, len(segments))
	total, largest := 0, 0
	for i, s := range segments {
		color := hexColor(config.SegmentPalette[i%len(config.SegmentPalette)])
		bars = append(bars, chart.Value{
			Value: float64(s.CustomerCount),
			Label: "Segment " + s.Cluster,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		total += s.CustomerCount
		largest = max(largest, s.CustomerCount)
	}
	if len(bars) == 0 || total == 0 {
		return ErrNoData
	}

	bar := chart.BarChart{
		Title:      "Customer Segments",
		Width:      r.width,
		Height:     r.height,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(largest) * 1.1}},
		Bars:       bars,
	}
	return bar.Render(chart.PNG, w)
}

func (r *Renderer) timeSeries(w io.Writer, title, yName, color, xFormat string, xs []time.Time, ys []float64) error {
	// go-chart needs two X values to compute a range
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	top := 0.0
	for _, y := range ys {
		top = max(top, y)
	}
	if top <= 0 {
		return ErrNoData
	}

	c := hexColor(color)
	graph := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat(xFormat)},
		YAxis:      chart.YAxis{Name: yName, Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    yName,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: c, StrokeWidth: 3, DotColor: c, DotWidth: 4},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
