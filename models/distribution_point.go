package models

import "time"

// DistributionPoint represents a distribution box (ODP). It terminates at most
// one Core and is attached directly to a Location.
//
// Example JSON representation:
//
//	{
//	  "id": 12,
//	  "name": "ODP-01-A",
//	  "core_id": 10,
//	  "location_id": 1,
//	  "status": "active",
//	  "deleted_at": null
//	}
type DistributionPoint struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Name string `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`

	// CoreID is the terminated core. At most one row references a core; the
	// unique index backs the application check.
	CoreID *uint `json:"core_id" gorm:"uniqueIndex:idx_distribution_points_core_id"`

	// LocationID is the site the box is mounted at (required)
	LocationID uint `json:"location_id" gorm:"not null;index" validate:"required"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Core     *Core     `json:"core,omitempty" gorm:"foreignKey:CoreID"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (DistributionPoint) TableName() string { return "distribution_points" }

func (d *DistributionPoint) GetID() uint { return d.ID }

func (d *DistributionPoint) References() []Reference {
	return []Reference{
		{Field: "core_id", Table: "cores", ID: optionalID(d.CoreID), Unique: true},
		{Field: "location_id", Table: "locations", ID: d.LocationID, Required: true},
	}
}
