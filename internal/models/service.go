package models

import (
	"time"

	"gorm.io/datatypes"
)

// PricingModel selects how an order's price is derived from the customer's selection.
type PricingModel string

const (
	PricingFixedPackageWithAddons PricingModel = "fixedPackageWithAddons"
	PricingMultiCategoryOptions   PricingModel = "multiCategoryOptions"
	PricingSingleOption           PricingModel = "singleOption"
)

// Service is an entry of the laundromat catalog.
//
// Pricing holds the payload of the variant named by PricingModel. It is decoded by
// the pricing package; nothing else should read it directly.
type Service struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string         `json:"name" gorm:"type:varchar(100);not null"`
	Description  string         `json:"description" gorm:"type:text"`
	PricingModel PricingModel   `json:"pricing_model" gorm:"type:varchar(40);not null"`
	Pricing      datatypes.JSON `json:"pricing"`
	Active       bool           `json:"active" gorm:"not null;index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
