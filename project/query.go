package project

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lsst-desc/railplot/project/data_model"
)

// AlgoAll in an algorithm list selects every algorithm present for the
// selection.
const AlgoAll = "all"

// PointEstimates returns the truth column and the per-algorithm estimate
// columns for one (selection, flavor, tag). Rows come back in object index
// order; every algorithm must cover the same objects.
func PointEstimates(
	ctx context.Context,
	db *gorm.DB,
	selection, flavor, tag string,
	algos []string,
) ([]float64, map[string][]float64, error) {
	resolved, err := resolveAlgos(ctx, db, selection, flavor, tag, algos)
	if err != nil {
		return nil, nil, err
	}

	var truth []float64
	estimates := map[string][]float64{}

	for _, algo := range resolved {
		// Map conditions, not struct conditions: empty strings must filter
		// exactly instead of being dropped from the query.
		var rows []data_model.CatalogEntry
		err := db.WithContext(ctx).
			Where(map[string]any{
				"selection": selection,
				"flavor":    flavor,
				"tag":       tag,
				"algo":      algo,
			}).
			Order("object_index").
			Find(&rows).Error
		if err != nil {
			return nil, nil, fmt.Errorf("failed to query catalog for algo %s: %s", algo, err)
		}

		if len(rows) == 0 {
			return nil, nil, fmt.Errorf(
				"no catalog entries for selection=%s flavor=%s tag=%s algo=%s",
				selection, flavor, tag, algo,
			)
		}

		column := make([]float64, len(rows))
		for i, row := range rows {
			column[i] = row.ZEst
		}

		if truth == nil {
			truth = make([]float64, len(rows))
			for i, row := range rows {
				truth[i] = row.ZTrue
			}
		} else if len(column) != len(truth) {
			return nil, nil, fmt.Errorf(
				"algo %s has %d catalog entries, other algos have %d",
				algo, len(column), len(truth),
			)
		}

		estimates[algo] = column
	}

	return truth, estimates, nil
}

// resolveAlgos expands the special `all` entry into the algorithms actually
// present for the selection.
func resolveAlgos(
	ctx context.Context,
	db *gorm.DB,
	selection, flavor, tag string,
	algos []string,
) ([]string, error) {
	wantAll := len(algos) == 0
	for _, algo := range algos {
		if algo == AlgoAll {
			wantAll = true
			break
		}
	}
	if !wantAll {
		return algos, nil
	}

	var found []string
	err := db.WithContext(ctx).
		Model(&data_model.CatalogEntry{}).
		Where(map[string]any{
			"selection": selection,
			"flavor":    flavor,
			"tag":       tag,
		}).
		Distinct().
		Order("algo").
		Pluck("algo", &found).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list algorithms: %s", err)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf(
			"no catalog entries for selection=%s flavor=%s tag=%s",
			selection, flavor, tag,
		)
	}

	return found, nil
}

// Algos lists every algorithm present in the project.
func Algos(ctx context.Context, db *gorm.DB) ([]string, error) {
	var algos []string
	err := db.WithContext(ctx).
		Model(&data_model.CatalogEntry{}).
		Distinct().
		Order("algo").
		Pluck("algo", &algos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list algorithms: %s", err)
	}
	return algos, nil
}

// Selections lists every selection present in the project.
func Selections(ctx context.Context, db *gorm.DB) ([]string, error) {
	var selections []string
	err := db.WithContext(ctx).
		Model(&data_model.CatalogEntry{}).
		Distinct().
		Order("selection").
		Pluck("selection", &selections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %s", err)
	}
	return selections, nil
}
