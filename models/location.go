package models

import "time"

// Location represents a physical site and is the root of the containment
// hierarchy. Locations carry no lifecycle pair; they are never archived or
// deleted.
//
// Example JSON representation:
//
//	{
//	  "id": 1,
//	  "name": "Site A",
//	  "description": "POP behind the market",
//	  "latitude": -6.2,
//	  "longitude": 106.8
//	}
type Location struct {
	// ID is the auto-increment primary key
	ID uint `json:"id" gorm:"primaryKey"`

	// Name is the human-readable site name (required)
	Name string `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`

	// Description is free text shown in detail views
	Description string `json:"description" gorm:"type:text"`

	// Latitude in decimal degrees
	Latitude float64 `json:"latitude" validate:"gte=-90,lte=90"`

	// Longitude in decimal degrees
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

func (l *Location) GetID() uint { return l.ID }

func (l *Location) References() []Reference { return nil }
