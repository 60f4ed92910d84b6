// Package pzplot provides plotters for diagnosing photometric redshift
// point estimates against true redshifts.
package pzplot

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/lsst-desc/railplot/dataset"
	"github.com/lsst-desc/railplot/figure"
	"github.com/lsst-desc/railplot/param"
	"github.com/lsst-desc/railplot/plotting"
)

// Plotter kinds registered by this package.
const (
	KindHist2D   = "point_estimate_hist2d"
	KindProfile  = "point_estimate_profile"
	KindAccuracy = "accuracy_vs_true"
)

// Data keys consumed by the plotters in this package.
const (
	KeyTruth          = "truth"
	KeyPointEstimate  = "point_estimate"
	KeyPointEstimates = "point_estimates"
)

const (
	xLabel = "True Redshift"
	yLabel = "Estimated Redshift"
)

func init() {
	plotting.Register(KindHist2D, newHist2D)
	plotting.Register(KindProfile, newProfile)
	plotting.Register(KindAccuracy, newAccuracy)
}

func zBinOptions() param.Options {
	return param.Options{
		"z_min":   {Kind: param.Float, Default: 0.0, Doc: "minimum redshift"},
		"z_max":   {Kind: param.Float, Default: 3.0, Doc: "maximum redshift"},
		"n_zbins": {Kind: param.Int, Default: 150, Doc: "number of redshift bins"},
	}
}

// binEdges returns n+1 evenly spaced edges over [min, max].
func binEdges(min, max float64, n int) []float64 {
	edges := make([]float64, n+1)
	step := (max - min) / float64(n)
	for i := range edges {
		edges[i] = min + float64(i)*step
	}
	edges[n] = max
	return edges
}

// binCenters returns the midpoints of the bins described by edges.
func binCenters(edges []float64) []float64 {
	centers := make([]float64, len(edges)-1)
	for i := range centers {
		centers[i] = 0.5 * (edges[i] + edges[i+1])
	}
	return centers
}

// binIndex returns the bin holding v, or -1 when v falls outside the edges.
// The upper edge of the last bin is inclusive.
func binIndex(edges []float64, v float64) int {
	n := len(edges) - 1
	if v < edges[0] || v > edges[n] {
		return -1
	}
	if v == edges[n] {
		return n - 1
	}
	idx := sort.SearchFloat64s(edges, v)
	if idx > 0 && edges[idx] != v {
		idx--
	}
	return idx
}

// binValues groups values by the bin their matching truth entry falls into.
func binValues(truth, values, edges []float64) [][]float64 {
	bins := make([][]float64, len(edges)-1)
	for i, t := range truth {
		idx := binIndex(edges, t)
		if idx < 0 {
			continue
		}
		bins[idx] = append(bins[idx], values[i])
	}
	return bins
}

// Hist2D renders a 2D histogram of estimated versus true redshift.
type Hist2D struct {
	name string
	cfg  *param.Config
}

func newHist2D(name string, config map[string]any) (plotting.Plotter, error) {
	cfg, err := param.Resolve(zBinOptions(), config)
	if err != nil {
		return nil, err
	}
	return &Hist2D{name: name, cfg: cfg}, nil
}

func (p *Hist2D) Name() string { return p.name }

func (p *Hist2D) Inputs() []dataset.Input {
	return []dataset.Input{
		{Key: KeyTruth, Kind: dataset.Column},
		{Key: KeyPointEstimate, Kind: dataset.Column},
	}
}

func (p *Hist2D) Plot(prefix string, data dataset.Data) (map[string]figure.Figure, error) {
	truth := data.Columns[KeyTruth]
	estimates := data.Columns[KeyPointEstimate]
	if len(truth) != len(estimates) {
		return nil, fmt.Errorf(
			"truth and point estimate lengths differ, %d vs %d",
			len(truth), len(estimates),
		)
	}

	nBins := p.cfg.Int("n_zbins")
	edges := binEdges(p.cfg.Float("z_min"), p.cfg.Float("z_max"), nBins)

	grid := &countGrid{
		n:       nBins,
		counts:  make([]float64, nBins*nBins),
		centers: binCenters(edges),
	}
	for i, t := range truth {
		col := binIndex(edges, t)
		row := binIndex(edges, estimates[i])
		if col < 0 || row < 0 {
			continue
		}
		grid.counts[row*nBins+col]++
	}

	plt := plot.New()
	plt.X.Label.Text = xLabel
	plt.Y.Label.Text = yLabel
	plt.Add(plotter.NewHeatMap(grid, palette.Heat(16, 1)))

	name := plotting.PlotName(p.name, prefix, "hist")
	return map[string]figure.Figure{
		name: {Name: name, Plot: plt},
	}, nil
}

// countGrid is a square count matrix addressed by bin centers, implementing
// the grid interface the heat map plotter expects.
type countGrid struct {
	n       int
	counts  []float64
	centers []float64
}

func (g *countGrid) Dims() (int, int)   { return g.n, g.n }
func (g *countGrid) Z(c, r int) float64 { return g.counts[r*g.n+c] }
func (g *countGrid) X(c int) float64    { return g.centers[c] }
func (g *countGrid) Y(r int) float64    { return g.centers[r] }

// Profile renders the per-bin mean offset of the point estimate from the bin
// center, with standard deviation error bars.
type Profile struct {
	name string
	cfg  *param.Config
}

func newProfile(name string, config map[string]any) (plotting.Plotter, error) {
	cfg, err := param.Resolve(zBinOptions(), config)
	if err != nil {
		return nil, err
	}
	return &Profile{name: name, cfg: cfg}, nil
}

func (p *Profile) Name() string { return p.name }

func (p *Profile) Inputs() []dataset.Input {
	return []dataset.Input{
		{Key: KeyTruth, Kind: dataset.Column},
		{Key: KeyPointEstimate, Kind: dataset.Column},
	}
}

// profileStats returns, per bin, the mean offset of the estimates from the
// bin center and their population standard deviation. Empty bins yield zero
// for both.
func profileStats(truth, estimates, edges []float64) (means, stds []float64) {
	centers := binCenters(edges)
	bins := binValues(truth, estimates, edges)

	means = make([]float64, len(bins))
	stds = make([]float64, len(bins))
	for i, values := range bins {
		if len(values) == 0 {
			continue
		}
		means[i] = stat.Mean(values, nil) - centers[i]
		stds[i] = stat.PopStdDev(values, nil)
	}
	return means, stds
}

func (p *Profile) Plot(prefix string, data dataset.Data) (map[string]figure.Figure, error) {
	truth := data.Columns[KeyTruth]
	estimates := data.Columns[KeyPointEstimate]
	if len(truth) != len(estimates) {
		return nil, fmt.Errorf(
			"truth and point estimate lengths differ, %d vs %d",
			len(truth), len(estimates),
		)
	}

	edges := binEdges(p.cfg.Float("z_min"), p.cfg.Float("z_max"), p.cfg.Int("n_zbins"))
	centers := binCenters(edges)
	means, stds := profileStats(truth, estimates, edges)

	points := profilePoints{
		XYs:     make(plotter.XYs, len(centers)),
		YErrors: make(plotter.YErrors, len(centers)),
	}
	for i := range centers {
		points.XYs[i].X = centers[i]
		points.XYs[i].Y = means[i]
		points.YErrors[i].Low = -stds[i]
		points.YErrors[i].High = stds[i]
	}

	plt := plot.New()
	plt.X.Label.Text = xLabel
	plt.Y.Label.Text = yLabel

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile scatter: %s", err)
	}
	errBars, err := plotter.NewYErrorBars(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile error bars: %s", err)
	}
	plt.Add(scatter, errBars)

	name := plotting.PlotName(p.name, prefix, "profile")
	return map[string]figure.Figure{
		name: {Name: name, Plot: plt},
	}, nil
}

type profilePoints struct {
	plotter.XYs
	plotter.YErrors
}

// Accuracy renders, per algorithm, the fraction of objects in each true
// redshift bin whose estimate lands within a cutoff of the truth.
type Accuracy struct {
	name string
	cfg  *param.Config
}

func newAccuracy(name string, config map[string]any) (plotting.Plotter, error) {
	opts := zBinOptions()
	opts["delta_cutoff"] = param.Param{
		Kind: param.Float, Default: 0.1, Doc: "delta-z cutoff for accuracy",
	}
	cfg, err := param.Resolve(opts, config)
	if err != nil {
		return nil, err
	}
	return &Accuracy{name: name, cfg: cfg}, nil
}

func (p *Accuracy) Name() string { return p.name }

func (p *Accuracy) Inputs() []dataset.Input {
	return []dataset.Input{
		{Key: KeyTruth, Kind: dataset.Column},
		{Key: KeyPointEstimates, Kind: dataset.ColumnMap},
	}
}

// accuracyCurve returns, per bin, the fraction of objects with
// |estimate - truth| <= cutoff. Empty bins yield NaN.
func accuracyCurve(truth, estimates, edges []float64, cutoff float64) []float64 {
	deltas := make([]float64, len(truth))
	for i := range truth {
		deltas[i] = estimates[i] - truth[i]
	}
	bins := binValues(truth, deltas, edges)

	curve := make([]float64, len(bins))
	for i, values := range bins {
		if len(values) == 0 {
			curve[i] = math.NaN()
			continue
		}
		within := 0
		for _, delta := range values {
			if math.Abs(delta) <= cutoff {
				within++
			}
		}
		curve[i] = float64(within) / float64(len(values))
	}
	return curve
}

// curveSegments splits a curve into runs of consecutive non-NaN bins, so
// empty bins render as gaps instead of being bridged by the line.
func curveSegments(centers, curve []float64) []plotter.XYs {
	segments := []plotter.XYs{}
	var current plotter.XYs
	for i, value := range curve {
		if math.IsNaN(value) {
			if len(current) > 0 {
				segments = append(segments, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: centers[i], Y: value})
	}
	if len(current) > 0 {
		segments = append(segments, current)
	}
	return segments
}

func (p *Accuracy) Plot(prefix string, data dataset.Data) (map[string]figure.Figure, error) {
	truth := data.Columns[KeyTruth]
	estimateMap := data.Maps[KeyPointEstimates]

	edges := binEdges(p.cfg.Float("z_min"), p.cfg.Float("z_max"), p.cfg.Int("n_zbins"))
	centers := binCenters(edges)
	cutoff := p.cfg.Float("delta_cutoff")

	plt := plot.New()
	plt.X.Label.Text = xLabel
	plt.Y.Label.Text = "Accuracy"
	plt.Y.Min = 0
	plt.Y.Max = 1

	algos := make([]string, 0, len(estimateMap))
	for algo := range estimateMap {
		algos = append(algos, algo)
	}
	sort.Strings(algos)

	for i, algo := range algos {
		estimates := estimateMap[algo]
		if len(estimates) != len(truth) {
			return nil, fmt.Errorf(
				"algorithm %s has %d estimates for %d truth values",
				algo, len(estimates), len(truth),
			)
		}

		curve := accuracyCurve(truth, estimates, edges, cutoff)

		for j, segment := range curveSegments(centers, curve) {
			line, err := plotter.NewLine(segment)
			if err != nil {
				return nil, fmt.Errorf("failed to build accuracy line for %s: %s", algo, err)
			}
			line.Color = plotutil.Color(i)
			plt.Add(line)
			if j == 0 {
				plt.Legend.Add(algo, line)
			}
		}
	}

	name := plotting.PlotName(p.name, prefix, "accuracy")
	return map[string]figure.Figure{
		name: {Name: name, Plot: plt},
	}, nil
}
