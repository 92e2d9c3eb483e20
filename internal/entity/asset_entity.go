package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Field is an operational site. Labels follow the numeric-code convention
// ("0515-Johnson Home"); Code carries the zero-padded prefix on its own.
type Field struct {
	Id          string `gorm:"primaryKey"`
	Name        string
	DisplayName string
	Code        string `gorm:"index"`
	FarmId      string `gorm:"index"`
	Acres       float64
	Status      string
	Attrs       datatypes.JSON // secondary label fields from the upstream sync
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Farm groups fields.
type Farm struct {
	Id          string `gorm:"primaryKey"`
	Name        string
	DisplayName string
	Status      string
	Attrs       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Tower is a network asset.
type Tower struct {
	Id          string `gorm:"primaryKey"`
	Name        string
	DisplayName string
	FrequencyHz int64
	Channel     string
	Status      string
	Attrs       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Bin is grain storage.
type Bin struct {
	Id              string `gorm:"primaryKey"`
	Name            string
	DisplayName     string
	Commodity       string
	CapacityBushels float64
	LevelBushels    float64
	Status          string
	Attrs           datatypes.JSON
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// SnapshotMeta is the single-row version tag written by the ingestion
// pipeline when it finishes a sync.
type SnapshotMeta struct {
	Id       int    `gorm:"primaryKey"`
	Version  string `gorm:"index"`
	SyncedAt time.Time
}
