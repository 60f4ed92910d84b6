package plotting

import (
	"fmt"
	"sort"

	"github.com/lsst-desc/railplot/dataset"
	"github.com/lsst-desc/railplot/figure"
)

// Plotter turns extracted catalog data into named figures. Implementations
// declare the data keys they consume; every produced figure is keyed
// `<plotterName>_<prefix>_<plotLabel>` where prefix identifies the dataset
// the data came from.
type Plotter interface {
	Name() string
	Inputs() []dataset.Input
	Plot(prefix string, data dataset.Data) (map[string]figure.Figure, error)
}

// Builder creates a named plotter instance from raw configuration values.
type Builder = func(name string, config map[string]any) (Plotter, error)

var builders = map[string]Builder{}

// Register makes a plotter kind available to plotter configuration files.
// Registering the same kind twice is a programming error.
func Register(kind string, builder Builder) {
	if _, ok := builders[kind]; ok {
		panic(fmt.Sprintf("plotter kind %s is already registered", kind))
	}
	builders[kind] = builder
}

// New creates a plotter of a registered kind.
func New(kind, name string, config map[string]any) (Plotter, error) {
	builder, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf(
			"unknown plotter kind %s, registered kinds are %v",
			kind, Kinds(),
		)
	}
	return builder(name, config)
}

// Kinds lists registered plotter kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(builders))
	for kind := range builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// PlotName builds the full name of one figure produced by a plotter.
func PlotName(plotterName, prefix, label string) string {
	return plotterName + "_" + prefix + "_" + label
}

// ValidateInputs checks that data carries everything a plotter declares.
func ValidateInputs(p Plotter, data dataset.Data) error {
	for _, input := range p.Inputs() {
		if !data.Has(input) {
			return fmt.Errorf(
				"%s %s not provided to plotter %s, available keys are %v",
				input.Kind, input.Key, p.Name(), data.Keys(),
			)
		}
	}
	return nil
}

// Run validates inputs and produces the plotter's figures.
func Run(p Plotter, prefix string, data dataset.Data) (map[string]figure.Figure, error) {
	if err := ValidateInputs(p, data); err != nil {
		return nil, err
	}
	return p.Plot(prefix, data)
}

// IteratePlotters runs several plotters over the same data.
func IteratePlotters(plotters []Plotter, prefix string, data dataset.Data) (map[string]figure.Figure, error) {
	out := map[string]figure.Figure{}
	for _, p := range plotters {
		figs, err := Run(p, prefix, data)
		if err != nil {
			return nil, err
		}
		for name, fig := range figs {
			out[name] = fig
		}
	}
	return out, nil
}

// Iterate runs several plotters over several named datasets, using each
// dataset name as the figure name prefix.
func Iterate(plotters []Plotter, dataDict map[string]dataset.Data) (map[string]figure.Figure, error) {
	prefixes := make([]string, 0, len(dataDict))
	for prefix := range dataDict {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	out := map[string]figure.Figure{}
	for _, prefix := range prefixes {
		figs, err := IteratePlotters(plotters, prefix, dataDict[prefix])
		if err != nil {
			return nil, err
		}
		for name, fig := range figs {
			out[name] = fig
		}
	}
	return out, nil
}
