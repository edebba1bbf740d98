package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a placed order together with the shipping quote it was priced with.
type Order struct {
	ID        uuid.UUID `gorm:"primaryKey;"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	RequestID string
	Email     string `gorm:"not null"`
	Country   string `gorm:"not null"`

	PostalCode string `gorm:"not null;index"`
	RegionCode string
	CityName   string

	WeightLbs     float64
	ItemsSubtotal decimal.Decimal `gorm:"type:numeric"`

	ShippingCost   decimal.Decimal `gorm:"type:numeric"`
	BaseCost       decimal.Decimal `gorm:"type:numeric"`
	ZoneCost       decimal.Decimal `gorm:"type:numeric"`
	Surcharge      decimal.Decimal `gorm:"type:numeric"`
	PerMileCharge  decimal.Decimal `gorm:"type:numeric"`
	DistanceCharge decimal.Decimal `gorm:"type:numeric"`
	DistanceMiles  float64
	ZoneLabel      string

	OrderTotal decimal.Decimal `gorm:"type:numeric"`
}

type OrderList []Order

func (o Order) String() string {
	return o.ID.String()
}
