package models

import (
	"time"

	"gorm.io/gorm"
)

// FetchRun archives the outcome of one fetch invocation.
type FetchRun struct {
	gorm.Model
	RunID         string `gorm:"uniqueIndex"`
	Station       string `gorm:"index"`
	DaysBack      int
	SensorCount   int
	FailedSensors int
	RecordCount   int
	OutputPath    string
	StartedAt     time.Time
	FinishedAt    time.Time
}
