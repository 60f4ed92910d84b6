package plotting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Factory holds named plotter instances and named lists of them, loaded from
// a YAML file.
type Factory struct {
	plotters     map[string]Plotter
	lists        map[string][]string
	plotterOrder []string
	listOrder    []string
}

func NewFactory() *Factory {
	return &Factory{
		plotters: map[string]Plotter{},
		lists:    map[string][]string{},
	}
}

// LoadYAML reads plotter definitions from a file. The file is a list of
// blocks, each either:
//
//	- Plotter:
//	      name: zestimate_v_ztrue_hist2d
//	      kind: point_estimate_hist2d
//	      z_min: 0.0
//	      z_max: 3.0
//	      n_zbins: 150
//	- PlotterList:
//	      name: z_estimate_f_z_true
//	      plotters:
//	          - zestimate_v_ztrue_hist2d
func (f *Factory) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read plotter file %s: %s", path, err)
	}

	var items []map[string]map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unable to parse plotter file %s: %s", path, err)
	}

	for _, item := range items {
		switch {
		case item["Plotter"] != nil:
			if err := f.addPlotter(item["Plotter"]); err != nil {
				return fmt.Errorf("%s: %s", path, err)
			}
		case item["PlotterList"] != nil:
			if err := f.addList(item["PlotterList"]); err != nil {
				return fmt.Errorf("%s: %s", path, err)
			}
		default:
			keys := make([]string, 0, len(item))
			for key := range item {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			return fmt.Errorf(
				"%s: expecting one of [Plotter PlotterList], got %v",
				path, keys,
			)
		}
	}

	return nil
}

func (f *Factory) addPlotter(config map[string]any) error {
	name, ok := config["name"].(string)
	if !ok {
		return fmt.Errorf("Plotter block does not contain a name")
	}
	if _, exists := f.plotters[name]; exists {
		return fmt.Errorf("Plotter %s is already defined", name)
	}

	kind, ok := config["kind"].(string)
	if !ok {
		return fmt.Errorf("Plotter block %s does not name a kind", name)
	}

	params := map[string]any{}
	for key, value := range config {
		if key == "name" || key == "kind" {
			continue
		}
		params[key] = value
	}

	plotter, err := New(kind, name, params)
	if err != nil {
		return fmt.Errorf("Plotter %s: %s", name, err)
	}

	f.plotters[name] = plotter
	f.plotterOrder = append(f.plotterOrder, name)

	return nil
}

func (f *Factory) addList(config map[string]any) error {
	name, ok := config["name"].(string)
	if !ok {
		return fmt.Errorf("PlotterList block does not contain a name")
	}
	if _, exists := f.lists[name]; exists {
		return fmt.Errorf("PlotterList %s is already defined", name)
	}

	rawList, ok := config["plotters"].([]any)
	if !ok {
		return fmt.Errorf("PlotterList block %s does not contain plotters", name)
	}

	names := []string{}
	for _, entry := range rawList {
		plotterName, ok := entry.(string)
		if !ok {
			return fmt.Errorf("PlotterList %s entries must be strings, got %T", name, entry)
		}
		if _, exists := f.plotters[plotterName]; !exists {
			return fmt.Errorf(
				"Plotter %s used in PlotterList %s is not found, known plotters are %v",
				plotterName, name, f.PlotterNames(),
			)
		}
		names = append(names, plotterName)
	}

	f.lists[name] = names
	f.listOrder = append(f.listOrder, name)

	return nil
}

// Plotter returns a plotter instance by name.
func (f *Factory) Plotter(name string) (Plotter, error) {
	plotter, ok := f.plotters[name]
	if !ok {
		return nil, fmt.Errorf(
			"Plotter named %s not found, known plotters are %v",
			name, f.PlotterNames(),
		)
	}
	return plotter, nil
}

// List returns the plotters grouped under a PlotterList name.
func (f *Factory) List(name string) ([]Plotter, error) {
	names, ok := f.lists[name]
	if !ok {
		return nil, fmt.Errorf(
			"PlotterList named %s not found, known lists are %v",
			name, f.ListNames(),
		)
	}

	plotters := make([]Plotter, 0, len(names))
	for _, plotterName := range names {
		plotters = append(plotters, f.plotters[plotterName])
	}
	return plotters, nil
}

// PlotterNames lists defined plotter names in definition order.
func (f *Factory) PlotterNames() []string {
	return append([]string{}, f.plotterOrder...)
}

// ListNames lists defined plotter list names in definition order.
func (f *Factory) ListNames() []string {
	return append([]string{}, f.listOrder...)
}

// WriteContents prints the factory contents in a human readable form.
func (f *Factory) WriteContents(w io.Writer) {
	fmt.Fprintln(w, "Plotters:")
	for _, name := range f.plotterOrder {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, "PlotterLists:")
	for _, name := range f.listOrder {
		fmt.Fprintf(w, "  %s: %v\n", name, f.lists[name])
	}
}
