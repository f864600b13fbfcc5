package models

import "time"

// Subscriber is a customer drop fed by one DistributionPoint. ClientID and
// CompanyID point into the external billing system and are never resolved
// here.
type Subscriber struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Name string `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`

	Address string `json:"address" gorm:"type:text"`

	// DistributionPointID is the feeding box; one drop per box
	DistributionPointID *uint `json:"distribution_point_id" gorm:"uniqueIndex:idx_subscribers_distribution_point_id"`

	LocationID uint `json:"location_id" gorm:"not null;index" validate:"required"`

	ClientID  *uint `json:"client_id" gorm:"index"`
	CompanyID *uint `json:"company_id" gorm:"index"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DistributionPoint *DistributionPoint `json:"distribution_point,omitempty" gorm:"foreignKey:DistributionPointID"`
	Location          *Location          `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (Subscriber) TableName() string { return "subscribers" }

func (s *Subscriber) GetID() uint { return s.ID }

func (s *Subscriber) References() []Reference {
	return []Reference{
		{Field: "distribution_point_id", Table: "distribution_points", ID: optionalID(s.DistributionPointID), Unique: true},
		{Field: "location_id", Table: "locations", ID: s.LocationID, Required: true},
	}
}
