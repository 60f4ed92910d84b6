// Package pzextract pulls point estimate data out of a project store for
// plotting.
package pzextract

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/lsst-desc/railplot/dataset"
	"github.com/lsst-desc/railplot/project"
	"github.com/lsst-desc/railplot/pzplot"
)

// KindPointEstimate is the extractor kind registered by this package.
const KindPointEstimate = "point_estimate"

func init() {
	dataset.RegisterExtractor(KindPointEstimate, func(name string) dataset.Extractor {
		return &PointEstimateExtractor{name: name}
	})
}

// PointEstimateExtractor extracts the truth column and per-algorithm point
// estimates for a query. The first algorithm (in name order) also fills the
// single-column point estimate slot, so both single and multi algorithm
// plotters can consume one extraction.
type PointEstimateExtractor struct {
	name string
}

func (e *PointEstimateExtractor) Name() string { return e.name }

func (e *PointEstimateExtractor) Extract(
	ctx context.Context,
	db *gorm.DB,
	query dataset.Query,
) (dataset.Data, error) {
	truth, estimates, err := project.PointEstimates(
		ctx, db, query.Selection, query.Flavor, query.Tag, query.Algos,
	)
	if err != nil {
		return dataset.Data{}, err
	}

	algos := make([]string, 0, len(estimates))
	for algo := range estimates {
		algos = append(algos, algo)
	}
	sort.Strings(algos)

	data := dataset.NewData()
	data.Columns[pzplot.KeyTruth] = truth
	data.Columns[pzplot.KeyPointEstimate] = estimates[algos[0]]
	data.Maps[pzplot.KeyPointEstimates] = estimates

	return data, nil
}
