package render

import (
	"fmt"
	"math"
	"strconv"

	"MonteSim/internal/domain/models"
	drepo "MonteSim/internal/domain/repository"
	"MonteSim/internal/services/montecarlo"

	charts "github.com/vicanso/go-charts/v2"
)

const contentTypePNG = "image/png"

// Visualizer draws simulation output as PNG line charts: a sample of paths
// plus the mean and the one and two sigma quantile bands.
type Visualizer struct {
	width       int
	height      int
	samplePaths int
}

type Option func(*Visualizer)

func WithSize(width, height int) Option {
	return func(v *Visualizer) {
		if width > 0 {
			v.width = width
		}
		if height > 0 {
			v.height = height
		}
	}
}

// WithSamplePaths limits how many individual runs are drawn.
func WithSamplePaths(n int) Option {
	return func(v *Visualizer) {
		if n >= 0 {
			v.samplePaths = n
		}
	}
}

func New(opts ...Option) *Visualizer {
	v := &Visualizer{width: 1000, height: 600, samplePaths: 10}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ drepo.Visualizer = (*Visualizer)(nil)

func (v *Visualizer) RenderForecast(result *models.SimulationResult, horizonMonths float64) (*models.Figure, error) {
	if result == nil || result.Paths == nil {
		return nil, models.InvalidInput("render", "no simulation result")
	}
	steps, _ := result.Dims()
	labels := make([]string, steps)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	title := fmt.Sprintf("Monte Carlo forecast • %s months • μ %.2f%% σ %.2f%%",
		strconv.FormatFloat(horizonMonths, 'f', -1, 64), result.ExpectedReturn*100, result.Volatility*100)
	return v.render(title, "trading days", labels, result, nil)
}

func (v *Visualizer) RenderBacktest(result *models.SimulationResult, actual *models.PriceSeries, horizonMonths float64) (*models.Figure, error) {
	if result == nil || result.Paths == nil {
		return nil, models.InvalidInput("render", "no simulation result")
	}
	prices, err := models.Prices(actual)
	if err != nil {
		return nil, err
	}
	steps, _ := result.Dims()
	n := min(steps, len(prices))
	labels := make([]string, n)
	for i, d := range actual.Dates()[:n] {
		labels[i] = d.Format("2006-01-02")
	}
	title := fmt.Sprintf("%s backtest • %s months", actual.Symbol, strconv.FormatFloat(horizonMonths, 'f', -1, 64))
	return v.render(title, labels[0]+" → "+labels[n-1], labels, result, prices[:n])
}

func (v *Visualizer) render(title, subtitle string, labels []string, result *models.SimulationResult, actual []float64) (*models.Figure, error) {
	n := len(labels)
	bands := montecarlo.ComputeBands(result)
	_, runs := result.Dims()

	var (
		values [][]float64
		names  []string
	)
	band := func(name string, xs []float64) {
		values = append(values, xs[:n])
		names = append(names, name)
	}
	// named series first so legend colours line up with series indexes
	if actual != nil {
		band("Actual", actual)
	}
	band("Mean", bands.Mean)
	band("-2σ", bands.Lower2)
	band("-1σ", bands.Lower1)
	band("+1σ", bands.Upper1)
	band("+2σ", bands.Upper2)
	for j := 0; j < min(v.samplePaths, runs); j++ {
		band("", result.Run(j))
	}

	yMin, yMax := bounds(values)
	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	legend := make([]string, 0, 6)
	for i := range seriesList {
		seriesList[i].Name = names[i]
		if names[i] != "" {
			legend = append(legend, names[i])
		}
	}

	split := 10
	if n < split {
		split = n
	}
	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: legend}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(v.width),
		charts.HeightOptionFunc(v.height),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return &models.Figure{ContentType: contentTypePNG, Data: buf}, nil
}

// bounds returns a padded y range over all finite values.
func bounds(values [][]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, xs := range values {
		for _, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return math.Max(0, lo-pad), hi + pad
}
