// Package report formats accuracy scores, grid-search results and
// predicted-class histograms for the console and as PNG charts.
//
// Everything here reads the outputs of Score, Accuracy and Predict as they
// are; no number is recomputed.
package report

import (
	"cmp"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/sklearn/model_selection"
	"gonum.org/v1/gonum/mat"
)

// DefaultBarWidth is the length of the longest histogram bar.
const DefaultBarWidth = 40

// Percent formats an accuracy in [0, 1] as a percentage with two decimals.
func Percent(acc float64) string {
	return fmt.Sprintf("%.2f%%", acc*100)
}

// ModelScore is the accuracy of one named model on the evaluation split.
type ModelScore struct {
	Name     string
	Accuracy float64
}

// Summary collects what the tuner prints after a run.
type Summary struct {
	Source   string
	Train    int
	Test     int
	Features int
	Classes  int
	Models   []ModelScore
	Search   *model_selection.SearchResult
}

// Write prints the summary: the data shape, one accuracy line per model and
// the grid table with the best cell marked.
func (s *Summary) Write(w io.Writer) error {
	ew := &errWriter{w: w}
	if s.Source != "" {
		ew.printf("Data: %s\n", s.Source)
	}
	ew.printf("Samples: %d train / %d test, %d features, %d classes\n\n", s.Train, s.Test, s.Features, s.Classes)

	if len(s.Models) > 0 {
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
		for _, m := range s.Models {
			fmt.Fprintf(tw, "%s accuracy:\t%s\n", m.Name, Percent(m.Accuracy))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if s.Search != nil {
		ew.printf("\nGrid search (%d cells):\n", len(s.Search.Results))
		if err := WriteGrid(ew, s.Search); err != nil {
			return err
		}
		best := s.Search.BestParams
		ew.printf("Best: learning_rate=%g epochs=%d accuracy=%s\n",
			best.LearningRate, best.Epochs, Percent(s.Search.BestScore))
	}
	return ew.err
}

// WriteGrid prints one row per grid cell in grid order.
func WriteGrid(w io.Writer, res *model_selection.SearchResult) error {
	if res == nil {
		return errors.NewValueError("report.WriteGrid", "nil search result")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "cell\tlearning_rate\tepochs\taccuracy\ttime\tbest\t")
	for i, cell := range res.Results {
		mark := ""
		if i == res.BestIndex {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%g\t%d\t%s\t%s\t%s\t\n",
			i, cell.Params.LearningRate, cell.Params.Epochs, Percent(cell.Score), cell.Duration.Round(time.Millisecond), mark)
	}
	return tw.Flush()
}

// WriteHistogram prints one bar per class, scaled so the largest count is
// width characters long. A non-zero count always gets at least one mark.
func WriteHistogram[L cmp.Ordered](w io.Writer, title string, counts []metrics.ClassCount[L], width int) error {
	if len(counts) == 0 {
		return errors.NewValueError("report.WriteHistogram", "no class counts")
	}
	if width <= 0 {
		width = DefaultBarWidth
	}

	maxCount, total := 0, 0
	for _, c := range counts {
		maxCount = max(maxCount, c.Count)
		total += c.Count
	}

	ew := &errWriter{w: w}
	if title != "" {
		ew.printf("%s\n", title)
	}
	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', 0)
	for _, c := range counts {
		fmt.Fprintf(tw, "%v\t|%s\t%d\t(%s)\n", c.Label, bar(c.Count, maxCount, width), c.Count, Percent(float64(c.Count)/float64(total)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return ew.err
}

func bar(count, maxCount, width int) string {
	if count <= 0 || maxCount <= 0 {
		return ""
	}
	n := int(math.Round(float64(count) * float64(width) / float64(maxCount)))
	return strings.Repeat("#", max(n, 1))
}

// WriteConfusionMatrix prints a confusion matrix from metrics.ConfusionMatrix
// with true classes as rows and predicted classes as columns.
func WriteConfusionMatrix[L cmp.Ordered](w io.Writer, cm mat.Matrix, classes []L) error {
	r, c := cm.Dims()
	if r != len(classes) || c != len(classes) {
		return errors.NewDimensionError("report.WriteConfusionMatrix", len(classes), r, 0)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "true\\pred\t")
	for _, cl := range classes {
		fmt.Fprintf(tw, "%v\t", cl)
	}
	fmt.Fprintln(tw)
	for i, cl := range classes {
		fmt.Fprintf(tw, "%v\t", cl)
		for j := range classes {
			fmt.Fprintf(tw, "%d\t", int(cm.At(i, j)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// errWriter keeps the first write error so formatting code can ignore it
// until the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
