package data_model

import (
	"gorm.io/gorm"
)

// CatalogEntry is one object's truth and estimated redshift for a single
// estimation algorithm run.
type CatalogEntry struct {
	ID uint `gorm:"primaryKey"`

	Selection string `gorm:"index:idx_catalog_key"`
	Flavor    string `gorm:"index:idx_catalog_key"`
	Tag       string `gorm:"index:idx_catalog_key"`
	Algo      string `gorm:"index:idx_catalog_key"`

	ObjectIndex int
	ZTrue       float64
	ZEst        float64
}

// IngestRecord is bookkeeping for one ingested catalog file.
type IngestRecord struct {
	gorm.Model

	SourcePath string
	RowCount   int

	Selection string
	Flavor    string
	Tag       string
	Algo      string
}
