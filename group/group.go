// Package group ties plotter lists and dataset dicts together into plot
// groups and drives whole plot production runs from a top level YAML file.
package group

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/lsst-desc/railplot/common"
	"github.com/lsst-desc/railplot/dataset"
	"github.com/lsst-desc/railplot/figure"
	"github.com/lsst-desc/railplot/plotting"
)

const (
	DefaultOutDir  = "."
	DefaultFigType = "png"
)

// Group pairs one plotter list with one dataset dict, plus output settings.
type Group struct {
	Name        string `yaml:"name"`
	PlotterList string `yaml:"plotter_list"`
	DatasetDict string `yaml:"dataset_dict"`
	OutDir      string `yaml:"outdir"`
	FigType     string `yaml:"figtype"`
}

// Config is the top level plot production configuration:
//
//	plotter_yaml: plotters.yaml
//	dataset_yaml: datasets.yaml
//	plot_groups:
//	    - name: gold_accuracy
//	      plotter_list: nice_plots
//	      dataset_dict: nice_data
//	      outdir: plots/gold
//	      figtype: png
type Config struct {
	PlotterYAML string  `yaml:"plotter_yaml"`
	DatasetYAML string  `yaml:"dataset_yaml"`
	Groups      []Group `yaml:"plot_groups"`
}

// LoadConfig reads the top level configuration. Relative plotter and dataset
// file paths are resolved against the config file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file %s: %s", path, err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to parse config file %s: %s", path, err)
	}

	if config.PlotterYAML == "" {
		return nil, fmt.Errorf("config file %s does not set plotter_yaml", path)
	}
	if config.DatasetYAML == "" {
		return nil, fmt.Errorf("config file %s does not set dataset_yaml", path)
	}
	if len(config.Groups) == 0 {
		return nil, fmt.Errorf("config file %s does not define any plot_groups", path)
	}

	seen := map[string]bool{}
	for i := range config.Groups {
		g := &config.Groups[i]
		if g.Name == "" {
			return nil, fmt.Errorf("config file %s: plot group %d has no name", path, i)
		}
		if seen[g.Name] {
			return nil, fmt.Errorf("config file %s: plot group %s is defined twice", path, g.Name)
		}
		seen[g.Name] = true

		g.OutDir = common.GetStrOr(g.OutDir, DefaultOutDir)
		g.FigType = common.GetStrOr(g.FigType, DefaultFigType)
	}

	rootDir := filepath.Dir(path)
	config.PlotterYAML = common.ResolveRelativePath(config.PlotterYAML, rootDir)
	config.DatasetYAML = common.ResolveRelativePath(config.DatasetYAML, rootDir)

	return config, nil
}

// Load reads the top level configuration and builds the plotter and dataset
// factories it references.
func Load(path string) (*Config, *plotting.Factory, *dataset.Factory, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, nil, nil, err
	}

	plotterFactory := plotting.NewFactory()
	if err := plotterFactory.LoadYAML(config.PlotterYAML); err != nil {
		return nil, nil, nil, err
	}

	datasetFactory := dataset.NewFactory()
	if err := datasetFactory.LoadYAML(config.DatasetYAML); err != nil {
		return nil, nil, nil, err
	}

	return config, plotterFactory, datasetFactory, nil
}

// Run renders one group's figures, saving and purging them per the flags.
// The returned map is empty when figures were saved and purged; the count
// reports how many figures were produced either way.
func (g *Group) Run(
	ctx context.Context,
	db *gorm.DB,
	plotterFactory *plotting.Factory,
	datasetFactory *dataset.Factory,
	save, purge bool,
) (map[string]figure.Figure, int, error) {
	plotters, err := plotterFactory.List(g.PlotterList)
	if err != nil {
		return nil, 0, fmt.Errorf("plot group %s: %s", g.Name, err)
	}

	dataDict, err := datasetFactory.ResolveDict(ctx, db, g.DatasetDict)
	if err != nil {
		return nil, 0, fmt.Errorf("plot group %s: %s", g.Name, err)
	}

	figs, err := plotting.Iterate(plotters, dataDict)
	if err != nil {
		return nil, 0, fmt.Errorf("plot group %s: %s", g.Name, err)
	}
	produced := len(figs)

	if save {
		if err := figure.WriteAll(figs, g.OutDir, g.FigType); err != nil {
			return nil, 0, fmt.Errorf("plot group %s: %s", g.Name, err)
		}
		log.Debugf("plot group %s: wrote %d figures to %s", g.Name, produced, g.OutDir)
		if purge {
			figs = map[string]figure.Figure{}
		}
	}

	return figs, produced, nil
}

// RunOptions control a whole plot production run.
type RunOptions struct {
	IncludeGroups []string
	ExcludeGroups []string

	SavePlots  bool
	PurgePlots bool

	// Overrides applied to every group when non-empty.
	OutDir  string
	FigType string
}

// filterGroups applies include/exclude lists to the configured groups,
// keeping definition order. Naming an unknown group in the include list is
// an error; excluded names that match nothing are ignored.
func filterGroups(groups []Group, include, exclude []string) ([]Group, error) {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}

	wanted := include
	if len(wanted) == 0 {
		wanted = names
	}

	out := []Group{}
	for _, name := range wanted {
		idx := slices.Index(names, name)
		if idx < 0 {
			return nil, fmt.Errorf(
				"plot group %s not found, known groups are %v",
				name, names,
			)
		}
		if slices.Contains(exclude, name) {
			continue
		}
		out = append(out, groups[idx])
	}

	return out, nil
}

// Run reads the top level config file and produces every selected plot
// group. The returned map holds all figures still in memory at the end of
// the run.
func Run(
	ctx context.Context,
	configPath string,
	db *gorm.DB,
	opts RunOptions,
) (map[string]figure.Figure, error) {
	config, plotterFactory, datasetFactory, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	groups, err := filterGroups(config.Groups, opts.IncludeGroups, opts.ExcludeGroups)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		log.Warn("no plot groups selected, nothing to do")
		return map[string]figure.Figure{}, nil
	}

	startAt := time.Now()
	written := 0
	out := map[string]figure.Figure{}

	bar := progressbar.Default(int64(len(groups)))
	for _, g := range groups {
		if opts.OutDir != "" {
			g.OutDir = opts.OutDir
		}
		if opts.FigType != "" {
			g.FigType = opts.FigType
		}

		figs, produced, err := g.Run(ctx, db, plotterFactory, datasetFactory, opts.SavePlots, opts.PurgePlots)
		if err != nil {
			return nil, err
		}

		if opts.SavePlots {
			written += produced
		}
		for name, fig := range figs {
			out[name] = fig
		}

		bar.Add(1)
	}

	log.Infof(
		"ran %d plot groups in %s, %d figures written",
		len(groups), time.Since(startAt).Round(time.Millisecond), written,
	)

	return out, nil
}
