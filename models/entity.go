package models

// Reference describes one outgoing foreign key of an entity.
type Reference struct {
	// Field is the JSON/column name of the foreign key (e.g. "core_id")
	Field string

	// Table is the referenced table
	Table string

	// ID is the referenced row, zero when the reference is unset
	ID uint

	// Required rejects writes that leave the reference unset
	Required bool

	// Unique allows at most one row of the owning kind per referenced row
	Unique bool
}

// Entity is the common surface of every stored topology record.
type Entity interface {
	GetID() uint
	References() []Reference
}

func optionalID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
