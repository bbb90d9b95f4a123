package bias

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartRenderer writes the top-groups horizontal bar chart to a well-known
// path for the presentation layer to serve. The chart is a reporting side
// effect: rendering failures degrade the report, they never fail it.
type ChartRenderer struct {
	path   string
	topN   int
	logger *logrus.Logger
}

// NewChartRenderer creates a renderer that overwrites the PNG at path on
// every call, keeping the topN largest groups.
func NewChartRenderer(path string, topN int, logger *logrus.Logger) *ChartRenderer {
	return &ChartRenderer{
		path:   path,
		topN:   topN,
		logger: logger,
	}
}

// Path returns the well-known chart location.
func (c *ChartRenderer) Path() string {
	return c.path
}

// Render draws the chart and atomically replaces the previous file
// (write-to-temp-then-rename), so a concurrent reader never observes a
// partially written image. Returns the final path.
func (c *ChartRenderer) Render(aggs []CohortAggregate) (string, error) {
	top := TopByDenialCount(aggs, c.topN)
	if len(top) == 0 {
		return "", fmt.Errorf("no groups to chart")
	}

	p := plot.New()
	p.Title.Text = "Bias Pattern: Denials by Demographics & Zip Code"
	p.X.Label.Text = "Number of Denials"

	// Reverse so the largest group lands at the top of the chart.
	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, agg := range top {
		j := len(top) - 1 - i
		values[j] = float64(agg.DenialCount)
		labels[j] = agg.Key.Label()
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return "", fmt.Errorf("building bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 0xff, G: 0x7f, B: 0x50, A: 0xff} // coral
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalY(labels...)

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating chart directory: %w", err)
		}
	}

	// Each render writes its own temp file so concurrent renders cannot
	// interleave, then the rename publishes a complete image.
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".chart-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp chart file: %w", err)
	}
	tmpPath := tmp.Name()

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("encoding chart: %w", err)
	}
	if _, err := wt.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing chart: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing chart file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("replacing chart: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"path":   c.path,
		"groups": len(top),
	}).Debug("Bias chart rendered")

	return c.path, nil
}
