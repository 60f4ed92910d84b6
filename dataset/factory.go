package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Def is one named dataset definition: an extractor plus the query it will
// be resolved with.
type Def struct {
	Name      string
	Extractor Extractor
	Query     Query
}

// Factory holds named dataset definitions and named groups of them, loaded
// from a YAML file. Extraction is deferred until a dataset is resolved
// against a project database, so definitions can be listed without touching
// catalog data.
type Factory struct {
	datasets     map[string]*Def
	dicts        map[string][]string
	datasetOrder []string
	dictOrder    []string
}

func NewFactory() *Factory {
	return &Factory{
		datasets: map[string]*Def{},
		dicts:    map[string][]string{},
	}
}

// LoadYAML reads dataset definitions from a file. The file is a list of
// blocks, each either:
//
//	- Dataset:
//	      name: gold_baseline_test
//	      extractor: point_estimate
//	      selection: gold
//	      flavor: baseline
//	      tag: test
//	      algos: ['all']
//	- DatasetDict:
//	      name: baseline_test
//	      datasets:
//	          - gold_baseline_test
func (f *Factory) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("can't read dataset file %s: %s", path, err)
	}

	var items []map[string]map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("unable to parse dataset file %s: %s", path, err)
	}

	for _, item := range items {
		switch {
		case item["Dataset"] != nil:
			if err := f.addDataset(item["Dataset"]); err != nil {
				return fmt.Errorf("%s: %s", path, err)
			}
		case item["DatasetDict"] != nil:
			if err := f.addDict(item["DatasetDict"]); err != nil {
				return fmt.Errorf("%s: %s", path, err)
			}
		default:
			return fmt.Errorf(
				"%s: expecting one of [Dataset DatasetDict], got %v",
				path, blockKeys(item),
			)
		}
	}

	return nil
}

func (f *Factory) addDataset(config map[string]any) error {
	name, ok := config["name"].(string)
	if !ok {
		return fmt.Errorf("Dataset block does not contain a name: %v", mapKeys(config))
	}
	if _, exists := f.datasets[name]; exists {
		return fmt.Errorf("Dataset %s is already defined", name)
	}

	kind, ok := config["extractor"].(string)
	if !ok {
		return fmt.Errorf("Dataset block %s does not name an extractor: %v", name, mapKeys(config))
	}

	extractor, err := NewExtractor(kind, name)
	if err != nil {
		return fmt.Errorf("Dataset %s: %s", name, err)
	}

	query, err := queryFromConfig(config)
	if err != nil {
		return fmt.Errorf("Dataset %s: %s", name, err)
	}

	f.datasets[name] = &Def{Name: name, Extractor: extractor, Query: query}
	f.datasetOrder = append(f.datasetOrder, name)

	return nil
}

func queryFromConfig(config map[string]any) (Query, error) {
	query := Query{}

	for key, value := range config {
		switch key {
		case "name", "extractor":
			// handled by the caller
		case "selection":
			query.Selection, _ = value.(string)
		case "flavor":
			query.Flavor, _ = value.(string)
		case "tag":
			query.Tag, _ = value.(string)
		case "algos":
			list, ok := value.([]any)
			if !ok {
				return query, fmt.Errorf("algos must be a list, got %T", value)
			}
			for _, entry := range list {
				algo, ok := entry.(string)
				if !ok {
					return query, fmt.Errorf("algos entries must be strings, got %T", entry)
				}
				query.Algos = append(query.Algos, algo)
			}
		default:
			return query, fmt.Errorf("unrecognized dataset field %s", key)
		}
	}

	return query, nil
}

func (f *Factory) addDict(config map[string]any) error {
	name, ok := config["name"].(string)
	if !ok {
		return fmt.Errorf("DatasetDict block does not contain a name: %v", mapKeys(config))
	}
	if _, exists := f.dicts[name]; exists {
		return fmt.Errorf("DatasetDict %s is already defined", name)
	}

	rawList, ok := config["datasets"].([]any)
	if !ok {
		return fmt.Errorf("DatasetDict block %s does not contain datasets: %v", name, mapKeys(config))
	}

	names := []string{}
	for _, entry := range rawList {
		datasetName, ok := entry.(string)
		if !ok {
			return fmt.Errorf("DatasetDict %s entries must be strings, got %T", name, entry)
		}
		if _, exists := f.datasets[datasetName]; !exists {
			return fmt.Errorf(
				"Dataset %s used in DatasetDict %s is not found, known datasets are %v",
				datasetName, name, f.DatasetNames(),
			)
		}
		names = append(names, datasetName)
	}

	f.dicts[name] = names
	f.dictOrder = append(f.dictOrder, name)

	return nil
}

// Dataset returns a dataset definition by name.
func (f *Factory) Dataset(name string) (*Def, error) {
	def, ok := f.datasets[name]
	if !ok {
		return nil, fmt.Errorf(
			"Dataset named %s not found, known datasets are %v",
			name, f.DatasetNames(),
		)
	}
	return def, nil
}

// Dict returns the definitions grouped under a DatasetDict name.
func (f *Factory) Dict(name string) ([]*Def, error) {
	names, ok := f.dicts[name]
	if !ok {
		return nil, fmt.Errorf(
			"DatasetDict named %s not found, known dicts are %v",
			name, f.DictNames(),
		)
	}

	defs := make([]*Def, 0, len(names))
	for _, datasetName := range names {
		defs = append(defs, f.datasets[datasetName])
	}
	return defs, nil
}

// DatasetNames lists defined dataset names in definition order.
func (f *Factory) DatasetNames() []string {
	return append([]string{}, f.datasetOrder...)
}

// DictNames lists defined dataset dict names in definition order.
func (f *Factory) DictNames() []string {
	return append([]string{}, f.dictOrder...)
}

// Resolve extracts the data for one named dataset from a project database.
func (f *Factory) Resolve(ctx context.Context, db *gorm.DB, name string) (Data, error) {
	def, err := f.Dataset(name)
	if err != nil {
		return Data{}, err
	}

	data, err := def.Extractor.Extract(ctx, db, def.Query)
	if err != nil {
		return Data{}, fmt.Errorf("failed to extract dataset %s: %s", name, err)
	}
	return data, nil
}

// ResolveDict extracts the data for every dataset in a named dict.
func (f *Factory) ResolveDict(ctx context.Context, db *gorm.DB, name string) (map[string]Data, error) {
	names, ok := f.dicts[name]
	if !ok {
		return nil, fmt.Errorf(
			"DatasetDict named %s not found, known dicts are %v",
			name, f.DictNames(),
		)
	}

	out := map[string]Data{}
	for _, datasetName := range names {
		data, err := f.Resolve(ctx, db, datasetName)
		if err != nil {
			return nil, err
		}
		out[datasetName] = data
	}
	return out, nil
}

// WriteContents prints the factory contents in a human readable form.
func (f *Factory) WriteContents(w io.Writer) {
	fmt.Fprintln(w, "Datasets:")
	for _, name := range f.datasetOrder {
		def := f.datasets[name]
		fmt.Fprintf(
			w, "  %s: extractor=%s selection=%s flavor=%s tag=%s algos=%v\n",
			name, def.Extractor.Name(), def.Query.Selection,
			def.Query.Flavor, def.Query.Tag, def.Query.Algos,
		)
	}
	fmt.Fprintln(w, "DatasetDicts:")
	for _, name := range f.dictOrder {
		fmt.Fprintf(w, "  %s: %v\n", name, f.dicts[name])
	}
}

func blockKeys(item map[string]map[string]any) []string {
	keys := make([]string, 0, len(item))
	for key := range item {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
