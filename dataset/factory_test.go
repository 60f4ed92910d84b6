package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"
)

type stubExtractor struct {
	name string
}

func (e *stubExtractor) Name() string { return e.name }

func (e *stubExtractor) Extract(_ context.Context, _ *gorm.DB, query Query) (Data, error) {
	data := NewData()
	data.Columns["truth"] = []float64{0.1, 0.2, 0.3}
	data.Maps["point_estimates"] = map[string][]float64{
		query.Selection: {0.1, 0.2, 0.3},
	}
	return data, nil
}

func init() {
	RegisterExtractor("stub", func(name string) Extractor {
		return &stubExtractor{name: name}
	})
}

const sampleYAML = `
- Dataset:
    name: gold_baseline_test
    extractor: stub
    selection: gold
    flavor: baseline
    tag: test
    algos: ['all']
- Dataset:
    name: blend_baseline_test
    extractor: stub
    selection: blend
    flavor: baseline
    tag: test
- DatasetDict:
    name: baseline_test
    datasets:
        - gold_baseline_test
        - blend_baseline_test
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "datasets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write sample yaml: %s", err)
	}
	return path
}

func TestFactoryLoadYAML(t *testing.T) {
	factory := NewFactory()
	if err := factory.LoadYAML(writeTempYAML(t, sampleYAML)); err != nil {
		t.Fatalf("load failed: %s", err)
	}

	names := factory.DatasetNames()
	if len(names) != 2 || names[0] != "gold_baseline_test" || names[1] != "blend_baseline_test" {
		t.Errorf("unexpected dataset names: %v", names)
	}

	def, err := factory.Dataset("gold_baseline_test")
	if err != nil {
		t.Fatalf("dataset lookup failed: %s", err)
	}
	if def.Query.Selection != "gold" || def.Query.Flavor != "baseline" || def.Query.Tag != "test" {
		t.Errorf("unexpected query: %+v", def.Query)
	}
	if len(def.Query.Algos) != 1 || def.Query.Algos[0] != "all" {
		t.Errorf("unexpected algos: %v", def.Query.Algos)
	}

	defs, err := factory.Dict("baseline_test")
	if err != nil {
		t.Fatalf("dict lookup failed: %s", err)
	}
	if len(defs) != 2 {
		t.Errorf("dict has %d datasets, want 2", len(defs))
	}
}

func TestFactoryUnknownLookup(t *testing.T) {
	factory := NewFactory()
	if err := factory.LoadYAML(writeTempYAML(t, sampleYAML)); err != nil {
		t.Fatalf("load failed: %s", err)
	}

	_, err := factory.Dataset("nope")
	if err == nil {
		t.Fatal("expecting error for unknown dataset")
	}
	if !strings.Contains(err.Error(), "gold_baseline_test") {
		t.Errorf("error does not list known datasets: %s", err)
	}

	if _, err := factory.Dict("nope"); err == nil {
		t.Error("expecting error for unknown dict")
	}
}

func TestFactoryDictUnknownDataset(t *testing.T) {
	content := `
- DatasetDict:
    name: broken
    datasets:
        - missing_dataset
`
	factory := NewFactory()
	err := factory.LoadYAML(writeTempYAML(t, content))
	if err == nil {
		t.Fatal("expecting error for dict referencing unknown dataset")
	}
	if !strings.Contains(err.Error(), "missing_dataset") {
		t.Errorf("error does not name the missing dataset: %s", err)
	}
}

func TestFactoryDuplicateDataset(t *testing.T) {
	content := `
- Dataset:
    name: twice
    extractor: stub
- Dataset:
    name: twice
    extractor: stub
`
	factory := NewFactory()
	if err := factory.LoadYAML(writeTempYAML(t, content)); err == nil {
		t.Fatal("expecting error for duplicate dataset name")
	}
}

func TestFactoryUnknownBlock(t *testing.T) {
	content := `
- Plotter:
    name: wrong_file
`
	factory := NewFactory()
	err := factory.LoadYAML(writeTempYAML(t, content))
	if err == nil {
		t.Fatal("expecting error for unknown block kind")
	}
	if !strings.Contains(err.Error(), "Dataset") {
		t.Errorf("error does not list accepted block kinds: %s", err)
	}
}

func TestFactoryUnknownExtractor(t *testing.T) {
	content := `
- Dataset:
    name: bad
    extractor: never_registered
`
	factory := NewFactory()
	err := factory.LoadYAML(writeTempYAML(t, content))
	if err == nil {
		t.Fatal("expecting error for unknown extractor kind")
	}
	if !strings.Contains(err.Error(), "never_registered") {
		t.Errorf("error does not name the unknown kind: %s", err)
	}
}

func TestFactoryResolveDict(t *testing.T) {
	factory := NewFactory()
	if err := factory.LoadYAML(writeTempYAML(t, sampleYAML)); err != nil {
		t.Fatalf("load failed: %s", err)
	}

	dataDict, err := factory.ResolveDict(context.Background(), nil, "baseline_test")
	if err != nil {
		t.Fatalf("resolve failed: %s", err)
	}
	if len(dataDict) != 2 {
		t.Fatalf("resolved %d datasets, want 2", len(dataDict))
	}

	data := dataDict["gold_baseline_test"]
	if !data.Has(Input{Key: "truth", Kind: Column}) {
		t.Error("resolved data is missing truth column")
	}
	if _, ok := data.Maps["point_estimates"]["gold"]; !ok {
		t.Error("stub extractor did not receive the dataset query")
	}
}
