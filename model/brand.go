package model

import "time"

const (
	BrandCodeDeye    = "deye"
	BrandCodeGrowatt = "growatt"
)

// Brand is immutable reference data describing one vendor cloud.
type Brand struct {
	ID        int64      `gorm:"column:id;primaryKey" json:"id"`
	Name      string     `gorm:"column:name" json:"name"`
	Code      string     `gorm:"column:code;uniqueIndex" json:"code"`
	BaseURL   string     `gorm:"column:base_url" json:"base_url"`
	CreatedAt *time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (*Brand) TableName() string {
	return "tbl_brands"
}
