package models

import "time"

// Core is a single fiber strand inside a Tube. A core terminates at no more
// than one DistributionPoint; the link is held on the DistributionPoint side.
type Core struct {
	ID uint `json:"id" gorm:"primaryKey"`

	TubeID uint `json:"tube_id" gorm:"not null;index" validate:"required"`

	// Color is one of FiberColors
	Color string `json:"color" gorm:"size:16;not null" validate:"required,fibercolor"`

	Lifecycle

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Tube *Tube `json:"tube,omitempty" gorm:"foreignKey:TubeID"`
}

func (Core) TableName() string { return "cores" }

func (c *Core) GetID() uint { return c.ID }

func (c *Core) References() []Reference {
	return []Reference{
		{Field: "tube_id", Table: "tubes", ID: c.TubeID, Required: true},
	}
}
