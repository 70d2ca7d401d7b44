package report

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/sklearn/model_selection"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveHistogramPNG draws the predicted-class counts as a bar chart. The image
// format follows the extension of path.
func SaveHistogramPNG[L cmp.Ordered](path, title string, counts []metrics.ClassCount[L]) error {
	if len(counts) == 0 {
		return errors.NewValueError("report.SaveHistogramPNG", "no class counts")
	}

	values := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		values[i] = float64(c.Count)
		names[i] = fmt.Sprint(c.Label)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Class"
	p.Y.Label.Text = "Predictions"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return errors.Wrap(err, "report: histogram bars")
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}

// SaveGridPNG plots grid-search accuracy against epochs, one line per
// learning rate.
func SaveGridPNG(path string, res *model_selection.SearchResult) error {
	if res == nil || len(res.Results) == 0 {
		return errors.NewValueError("report.SaveGridPNG", "empty search result")
	}

	var rates []float64
	lines := make(map[float64]plotter.XYs)
	for _, cell := range res.Results {
		lr := cell.Params.LearningRate
		if _, ok := lines[lr]; !ok {
			rates = append(rates, lr)
		}
		lines[lr] = append(lines[lr], plotter.XY{X: float64(cell.Params.Epochs), Y: cell.Score})
	}

	p := plot.New()
	p.Title.Text = "Grid search"
	p.X.Label.Text = "Epochs"
	p.Y.Label.Text = "Accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	args := make([]interface{}, 0, 2*len(rates))
	for _, lr := range rates {
		pts := lines[lr]
		slices.SortStableFunc(pts, func(a, b plotter.XY) int { return cmp.Compare(a.X, b.X) })
		args = append(args, fmt.Sprintf("lr=%g", lr), pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return errors.Wrap(err, "report: grid lines")
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: save %s", path)
	}
	return nil
}
