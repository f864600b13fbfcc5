package models

import (
	"time"

	"gorm.io/gorm"
)

// Cable represents a fiber cable run leaving a SplitterNode. A cable holds
// TubeCount tubes of CoresPerTube cores each; TotalCoreCount is derived from
// the two at write time and never from child rows.
//
// Example JSON representation:
//
//	{
//	  "id": 7,
//	  "splitter_id": 3,
//	  "name": "FO-24C-ODC01",
//	  "cable_type": "multicore",
//	  "length": 1250.5,
//	  "tube_count": 2,
//	  "cores_per_tube": 12,
//	  "total_core_count": 24,
//	  "status": "active",
//	  "deleted_at": null
//	}
type Cable struct {
	ID uint `json:"id" gorm:"primaryKey"`

	// SplitterID is the cabinet the cable leaves from (required)
	SplitterID uint `json:"splitter_id" gorm:"not null;index" validate:"required"`

	Name string `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`

	// CableType is singlecore or multicore
	CableType string `json:"cable_type" gorm:"size:16;not null" validate:"required,oneof=singlecore multicore"`

	// Length is the run length in meters
	Length float64 `json:"length" validate:"gte=0"`

	TubeCount    int `json:"tube_count" gorm:"not null;default:0" validate:"gte=0,lte=144"`
	CoresPerTube int `json:"cores_per_tube" gorm:"not null;default:0" validate:"gte=0,lte=144"`

	// TotalCoreCount is TubeCount * CoresPerTube, maintained by BeforeSave
	TotalCoreCount int `json:"total_core_count" gorm:"not null;default:0"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Splitter *SplitterNode `json:"splitter,omitempty" gorm:"foreignKey:SplitterID"`
}

func (Cable) TableName() string { return "cables" }

func (c *Cable) GetID() uint { return c.ID }

func (c *Cable) References() []Reference {
	return []Reference{
		{Field: "splitter_id", Table: "splitters", ID: c.SplitterID, Required: true},
	}
}

// BeforeSave keeps the derived core count consistent on every write.
func (c *Cable) BeforeSave(tx *gorm.DB) error {
	c.TotalCoreCount = c.TubeCount * c.CoresPerTube
	return nil
}
