package models

import (
	"gorm.io/gorm"
)

// Status is the archive axis of the lifecycle pair.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Visibility is the derived classification used for filtering listings.
// It is computed from Status and DeletedAt and never stored.
type Visibility string

const (
	VisibilityActive   Visibility = "active"
	VisibilityArchived Visibility = "archived"
	VisibilityDeleted  Visibility = "deleted"
)

// Visibilities lists every visibility class in canonical order.
var Visibilities = []Visibility{VisibilityActive, VisibilityArchived, VisibilityDeleted}

// Lifecycle is the (status, deleted_at) pair carried by every topology entity
// below Location. The two fields move independently: archiving only touches
// Status, deleting and restoring only touch DeletedAt.
//
// Example JSON representation:
//
//	{
//	  "status": "archived",
//	  "deleted_at": null
//	}
type Lifecycle struct {
	// Status is either active or archived
	Status Status `json:"status" gorm:"size:16;not null;default:active;index" validate:"omitempty,oneof=active archived"`

	// DeletedAt is set when the entity is soft-deleted
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index" swaggertype:"string"`
}

// LifecycleState exposes the embedded pair so generic code can reach it
// through any entity that embeds Lifecycle.
func (l *Lifecycle) LifecycleState() *Lifecycle {
	return l
}

// Visibility derives the visibility class. A deleted entity is deleted
// regardless of its status.
func (l Lifecycle) Visibility() Visibility {
	return ClassifyVisibility(l.Status, l.DeletedAt.Valid)
}

// ClassifyVisibility is the pure classification rule behind Lifecycle.Visibility.
func ClassifyVisibility(status Status, deleted bool) Visibility {
	switch {
	case deleted:
		return VisibilityDeleted
	case status == StatusArchived:
		return VisibilityArchived
	default:
		return VisibilityActive
	}
}

// Lifecycled is implemented by every entity that embeds Lifecycle.
type Lifecycled interface {
	LifecycleState() *Lifecycle
}
