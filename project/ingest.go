package project

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gorm.io/gorm"

	"github.com/lsst-desc/railplot/project/data_model"
)

const insertBatchSize = 500

// Meta identifies where ingested rows belong in the project.
type Meta struct {
	Selection string
	Flavor    string
	Tag       string
	Algo      string
}

// IngestCSV loads a single point estimate catalog into the project store.
// Returns the number of rows ingested.
func IngestCSV(ctx context.Context, db *gorm.DB, path string, meta Meta) (int, error) {
	return IngestCatalogs(ctx, db, []string{path}, meta)
}

// IngestCatalogs loads one or more catalog files that together form the data
// for a single (selection, flavor, tag, algo) key. Object indexes continue
// across files. A key that already has ingested data is refused, appending
// to it would duplicate object indexes and garble later queries.
func IngestCatalogs(ctx context.Context, db *gorm.DB, paths []string, meta Meta) (int, error) {
	if err := ensureNotIngested(ctx, db, meta); err != nil {
		return 0, err
	}

	total := 0
	for _, path := range paths {
		entries, err := readCatalog(path, total, meta)
		if err != nil {
			return 0, err
		}

		err = db.WithContext(ctx).CreateInBatches(entries, insertBatchSize).Error
		if err != nil {
			return 0, fmt.Errorf("failed to store catalog %s: %s", path, err)
		}

		record := data_model.IngestRecord{
			SourcePath: path,
			RowCount:   len(entries),
			Selection:  meta.Selection,
			Flavor:     meta.Flavor,
			Tag:        meta.Tag,
			Algo:       meta.Algo,
		}
		if err := db.WithContext(ctx).Create(&record).Error; err != nil {
			return 0, fmt.Errorf("failed to record ingest of %s: %s", path, err)
		}

		total += len(entries)
	}

	return total, nil
}

func ensureNotIngested(ctx context.Context, db *gorm.DB, meta Meta) error {
	var prior int64
	err := db.WithContext(ctx).
		Model(&data_model.IngestRecord{}).
		Where(map[string]any{
			"selection": meta.Selection,
			"flavor":    meta.Flavor,
			"tag":       meta.Tag,
			"algo":      meta.Algo,
		}).
		Count(&prior).Error
	if err != nil {
		return fmt.Errorf("failed to check for prior ingests: %s", err)
	}

	if prior > 0 {
		return fmt.Errorf(
			"selection=%s flavor=%s tag=%s algo=%s already has ingested data, refusing to append",
			meta.Selection, meta.Flavor, meta.Tag, meta.Algo,
		)
	}

	return nil
}

// readCatalog parses one catalog file. The file must have a header row naming
// a `z_true` and a `z_est` column; extra columns are ignored. Object indexes
// start at startIndex.
func readCatalog(path string, startIndex int, meta Meta) ([]data_model.CatalogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open catalog file %s: %s", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("can't read catalog header in %s: %s", path, err)
	}

	truthCol, estCol := -1, -1
	for i, name := range header {
		switch name {
		case "z_true":
			truthCol = i
		case "z_est":
			estCol = i
		}
	}
	if truthCol < 0 || estCol < 0 {
		return nil, fmt.Errorf(
			"catalog %s header must contain z_true and z_est columns, got %v",
			path, header,
		)
	}

	entries := []data_model.CatalogEntry{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %s", path, err)
		}
		line++

		zTrue, err := strconv.ParseFloat(record[truthCol], 64)
		if err != nil {
			return nil, fmt.Errorf("catalog %s line %d: bad z_true value %q", path, line, record[truthCol])
		}
		zEst, err := strconv.ParseFloat(record[estCol], 64)
		if err != nil {
			return nil, fmt.Errorf("catalog %s line %d: bad z_est value %q", path, line, record[estCol])
		}

		entries = append(entries, data_model.CatalogEntry{
			Selection:   meta.Selection,
			Flavor:      meta.Flavor,
			Tag:         meta.Tag,
			Algo:        meta.Algo,
			ObjectIndex: startIndex + len(entries),
			ZTrue:       zTrue,
			ZEst:        zEst,
		})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog %s contains no data rows", path)
	}

	return entries, nil
}
