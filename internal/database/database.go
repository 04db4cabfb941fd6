package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"openaq-archiver/internal/config"
	"openaq-archiver/internal/models"
)

var (
	DB      *gorm.DB
	once    sync.Once
	initErr error
)

func Init() error {
	once.Do(func() {
		DB, initErr = SetupDatabase(config.DBPath())
	})
	return initErr
}

func SetupDatabase(dbPath string) (*gorm.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(&models.FetchRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// RecordRun archives one fetch run.
func RecordRun(db *gorm.DB, run *models.FetchRun) error {
	return db.Create(run).Error
}

// RecentRuns lists archived fetch runs, newest first.
func RecentRuns(db *gorm.DB, limit int) ([]models.FetchRun, error) {
	var runs []models.FetchRun

	err := db.
		Order("finished_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch runs: %w", err)
	}

	return runs, nil
}
