package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle label of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in_progress"
	StatusFinished   OrderStatus = "finished"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Selection is what the customer picked for a service. Which fields are read
// depends on the service's pricing model.
type Selection struct {
	Addons  []string          `json:"addons,omitempty"`
	Option  string            `json:"option,omitempty"`
	Choices map[string]string `json:"choices,omitempty"`
}

// ServiceSnapshot keeps the service reference an order was placed against.
type ServiceSnapshot struct {
	ID   string `json:"id" gorm:"type:varchar(36);index"`
	Name string `json:"name" gorm:"type:varchar(100)"`
}

// Order represents a customer order.
type Order struct {
	ID             string                        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID     string                        `json:"customer_id" gorm:"type:varchar(36);not null;index"`
	Service        ServiceSnapshot               `json:"service" gorm:"embedded;embeddedPrefix:service_"`
	Detail         datatypes.JSONType[Selection] `json:"detail"`
	Observations   string                        `json:"observations" gorm:"type:text"`
	EstimatedPrice decimal.Decimal               `json:"estimated_price" gorm:"type:numeric(12,2);not null"`
	Status         OrderStatus                   `json:"status" gorm:"type:varchar(20);not null;index"`
	Active         bool                          `json:"active" gorm:"not null;index"`
	Version        int                           `json:"version" gorm:"not null"` // bumped on every status write
	CreatedAt      time.Time                     `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}
