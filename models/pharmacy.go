package models

import (
	"time"
)

// Pharmacy is reference data owned by the ingestion side.
type Pharmacy struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
