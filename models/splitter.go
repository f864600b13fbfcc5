package models

import "time"

// SplitterNode represents an outdoor splitter cabinet (ODC) installed at a
// Location.
//
// Example JSON representation:
//
//	{
//	  "id": 3,
//	  "location_id": 1,
//	  "name": "ODC-01",
//	  "splitter_ratio": "1:8",
//	  "status": "active",
//	  "deleted_at": null
//	}
type SplitterNode struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// LocationID is the owning site (required)
	LocationID uint `json:"location_id" gorm:"not null;index" validate:"required"`

	// Name is the cabinet label (required)
	Name string `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`

	// SplitterRatio is one of SplitterRatios
	SplitterRatio string `json:"splitter_ratio" gorm:"size:8;not null" validate:"required,splitratio"`

	Description string `json:"description" gorm:"type:text"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Location is the parent summary, populated on reads only
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID"`
}

func (SplitterNode) TableName() string { return "splitters" }

func (s *SplitterNode) GetID() uint { return s.ID }

func (s *SplitterNode) References() []Reference {
	return []Reference{
		{Field: "location_id", Table: "locations", ID: s.LocationID, Required: true},
	}
}
