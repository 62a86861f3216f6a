package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_analytics/utils"
	"gorm.io/gorm"
)

// Product is reference data owned by the ingestion side. Code is the
// stable external identifier used by the CLI entry points.
type Product struct {
	ID   int    `gorm:"primaryKey" json:"id"`
	Code string `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name string `gorm:"size:255" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetProductByCode(ctx context.Context, db *gorm.DB, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, utils.DataUnavailableError("empty product code")
	}
	var product Product
	if err := db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, utils.StoreError(fmt.Sprintf("product %q", code), err)
	}
	return &product, nil
}
