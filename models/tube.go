package models

import "time"

// Tube is a colored bundle inside a Cable.
type Tube struct {
	ID uint `json:"id" gorm:"primaryKey"`

	CableID uint `json:"cable_id" gorm:"not null;index" validate:"required"`

	// Color is one of FiberColors
	Color string `json:"color" gorm:"size:16;not null" validate:"required,fibercolor"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Cable *Cable `json:"cable,omitempty" gorm:"foreignKey:CableID"`
}

func (Tube) TableName() string { return "tubes" }

func (t *Tube) GetID() uint { return t.ID }

func (t *Tube) References() []Reference {
	return []Reference{
		{Field: "cable_id", Table: "cables", ID: t.CableID, Required: true},
	}
}
