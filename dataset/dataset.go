package dataset

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// InputKind describes the shape of one named piece of extracted data.
type InputKind int

const (
	// Column is a single numeric column.
	Column InputKind = iota
	// ColumnMap is a set of numeric columns keyed by algorithm name.
	ColumnMap
)

func (k InputKind) String() string {
	switch k {
	case Column:
		return "column"
	case ColumnMap:
		return "column map"
	default:
		return fmt.Sprintf("InputKind(%d)", int(k))
	}
}

// Input declares one data key a plotter expects to receive.
type Input struct {
	Key  string
	Kind InputKind
}

// Data carries extracted catalog data, as plain columns and as per-algorithm
// column maps.
type Data struct {
	Columns map[string][]float64
	Maps    map[string]map[string][]float64
}

// NewData returns an empty Data value ready to be filled.
func NewData() Data {
	return Data{
		Columns: map[string][]float64{},
		Maps:    map[string]map[string][]float64{},
	}
}

// Has reports whether data of the given key and kind is present.
func (d Data) Has(in Input) bool {
	switch in.Kind {
	case Column:
		_, ok := d.Columns[in.Key]
		return ok
	case ColumnMap:
		_, ok := d.Maps[in.Key]
		return ok
	default:
		return false
	}
}

// Keys returns all data keys present, sorted, for diagnostics.
func (d Data) Keys() []string {
	keys := []string{}
	for key := range d.Columns {
		keys = append(keys, key)
	}
	for key := range d.Maps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Query selects catalog rows for extraction. Algos may be `["all"]` to pick
// up every algorithm found for the selection.
type Query struct {
	Selection string
	Flavor    string
	Tag       string
	Algos     []string
}

// Extractor pulls named data out of a project catalog.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, db *gorm.DB, query Query) (Data, error)
}

// ExtractorBuilder creates a named extractor instance.
type ExtractorBuilder = func(name string) Extractor

var extractorBuilders = map[string]ExtractorBuilder{}

// RegisterExtractor makes an extractor kind available to dataset
// configuration files. Registering the same kind twice is a programming
// error.
func RegisterExtractor(kind string, builder ExtractorBuilder) {
	if _, ok := extractorBuilders[kind]; ok {
		panic(fmt.Sprintf("extractor kind %s is already registered", kind))
	}
	extractorBuilders[kind] = builder
}

// NewExtractor creates an extractor of a registered kind.
func NewExtractor(kind, name string) (Extractor, error) {
	builder, ok := extractorBuilders[kind]
	if !ok {
		return nil, fmt.Errorf(
			"unknown extractor kind %s, registered kinds are %v",
			kind, extractorKinds(),
		)
	}
	return builder(name), nil
}

func extractorKinds() []string {
	kinds := make([]string, 0, len(extractorBuilders))
	for kind := range extractorBuilders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
