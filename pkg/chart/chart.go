// pkg/chart/chart.go
package chart

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/David-Botos/bookstore-ingress/pkg/analytics"
)

// Default canvas size of the revenue chart
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// RevenueChart is a rendered-on-demand line chart of revenue by day
type RevenueChart struct {
	plot   *plot.Plot
	width  vg.Length
	height vg.Length
}

// RevenuePlot builds a line chart with markers, one point per day in the given order
func RevenuePlot(days []analytics.DayRevenue, title string) (*RevenueChart, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Revenue"
	p.Add(plotter.NewGrid())

	if len(days) > 0 {
		pts := make(plotter.XYs, len(days))
		labels := make([]string, len(days))
		for i, d := range days {
			pts[i].X = float64(i)
			pts[i].Y = d.Revenue
			labels[i] = d.Date
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to build revenue series: %w", err)
		}
		p.Add(line, points)
		p.NominalX(labels...)
	}

	return &RevenueChart{plot: p, width: DefaultWidth, height: DefaultHeight}, nil
}

// SavePNG writes the chart to path; the format follows the file extension
func (c *RevenueChart) SavePNG(path string) error {
	if err := c.plot.Save(c.width, c.height, path); err != nil {
		return fmt.Errorf("failed to save chart to %s: %w", path, err)
	}
	return nil
}

// WriteTo streams the chart as PNG
func (c *RevenueChart) WriteTo(w io.Writer) (int64, error) {
	wt, err := c.plot.WriterTo(c.width, c.height, "png")
	if err != nil {
		return 0, fmt.Errorf("failed to render chart: %w", err)
	}
	return wt.WriteTo(w)
}
