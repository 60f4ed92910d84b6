// Package project manages the on-disk catalog store plots are made from.
// A project is a sqlite database holding per-algorithm redshift estimates
// keyed by selection, flavor and tag.
package project

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lsst-desc/railplot/project/data_model"
)

func Open(filePath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to project database %s: %s", filePath, err)
	}

	err = db.AutoMigrate(
		&data_model.CatalogEntry{},
		&data_model.IngestRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("project database migration failed: %s", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	inner, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to close project database, can't read inner data: %s", err)
	}

	err = inner.Close()
	if err != nil {
		return fmt.Errorf("failed to close inner database: %s", err)
	}

	return nil
}
