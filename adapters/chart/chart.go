package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"datadash/domain/dataset"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ErrNothingToPlot is returned when no point has a numeric y value
var ErrNothingToPlot = errors.New("selected columns contain no plottable values")

// maxLabelledTicks bounds how many category labels the x axis shows
const maxLabelledTicks = 20

// Renderer draws line charts of chart points as PNG images
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer creates a renderer producing width x height images
func NewRenderer(width, height int) *Renderer {
	return &Renderer{Width: width, Height: height}
}

// Series holds the plottable coordinates derived from chart points
type Series struct {
	XValues     []float64
	YValues     []float64
	Categorical bool
	Ticks       []chart.Tick
}

// BuildSeries converts points into chart coordinates. A numeric x column is
// plotted on a continuous axis; anything else is plotted by row position with
// the cell text as tick labels. Points with a non-numeric y are skipped.
func BuildSeries(points []dataset.ChartPoint) (Series, error) {
	categorical := false
	for _, p := range points {
		if !p.X.IsMissing() && !p.X.IsNumeric() {
			categorical = true
			break
		}
	}

	var s Series
	s.Categorical = categorical
	var labels []string
	for _, p := range points {
		if !p.Y.IsNumeric() {
			continue
		}
		if categorical {
			labels = append(labels, p.X.String())
			s.XValues = append(s.XValues, float64(len(labels)))
		} else {
			if !p.X.IsNumeric() {
				continue
			}
			s.XValues = append(s.XValues, p.X.AsFloat64())
		}
		s.YValues = append(s.YValues, p.Y.AsFloat64())
	}
	if len(s.XValues) == 0 {
		return Series{}, ErrNothingToPlot
	}

	if categorical {
		step := 1
		if len(labels) > maxLabelledTicks {
			step = int(math.Ceil(float64(len(labels)) / maxLabelledTicks))
		}
		for i := 0; i < len(labels); i += step {
			s.Ticks = append(s.Ticks, chart.Tick{Value: float64(i + 1), Label: labels[i]})
		}
	}

	// go-chart needs at least two x values
	if len(s.XValues) == 1 {
		s.XValues = append(s.XValues, s.XValues[0]+1)
		s.YValues = append(s.YValues, s.YValues[0])
		if categorical {
			s.Ticks = append(s.Ticks, chart.Tick{Value: 2, Label: ""})
		}
	}
	return s, nil
}

func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// RenderLine writes a PNG line chart of y against x to w
func (r *Renderer) RenderLine(w io.Writer, sel dataset.AxisSelection, points []dataset.ChartPoint) error {
	startTime := time.Now()
	s, err := BuildSeries(points)
	if err != nil {
		return err
	}

	xAxis := chart.XAxis{Name: sel.X, Range: paddedRange(s.XValues)}
	if s.Categorical {
		xAxis.Ticks = s.Ticks
		xAxis.Range = &chart.ContinuousRange{Min: 0.5, Max: float64(len(s.XValues)) + 0.5}
	}

	ch := chart.Chart{
		Width:      r.Width,
		Height:     r.Height,
		Background: chart.Style{Padding: chart.Box{Top: 14, Left: 16, Right: 12, Bottom: 24}},
		XAxis:      xAxis,
		YAxis:      chart.YAxis{Name: sel.Y, Range: paddedRange(s.YValues)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    sel.Y,
				XValues: s.XValues,
				YValues: s.YValues,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2},
			},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render chart of %s against %s: %w", sel.Y, sel.X, err)
	}
	log.Printf("[chart] Rendered %d points in %.2fms", len(s.XValues), float64(time.Since(startTime).Nanoseconds())/1e6)

	_, err = w.Write(buf.Bytes())
	return err
}
