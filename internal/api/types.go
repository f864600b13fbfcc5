package api

import (
	"evalgo.org/fibertrack/internal/storage"
	"evalgo.org/fibertrack/models"
)

const statusSuccess = "success"

// ListResponse is the page envelope of a listing.
type ListResponse struct {
	Status string           `json:"status"`
	Data   []models.Entity  `json:"data"`
	Meta   storage.PageMeta `json:"meta"`
}

// ItemResponse wraps a single entity.
type ItemResponse struct {
	Status  string        `json:"status"`
	Data    models.Entity `json:"data"`
	Message string        `json:"message,omitempty"`
}

// BulkResponse reports a bulk lifecycle action.
type BulkResponse struct {
	Status  string              `json:"status"`
	Data    *storage.BulkResult `json:"data"`
	Message string              `json:"message"`
}

// ChildrenResponse lists the immediate children of an entity by kind.
type ChildrenResponse struct {
	Status string                     `json:"status"`
	Data   map[string][]models.Entity `json:"data"`
}

// StatsResponse wraps the overall rollup.
type StatsResponse struct {
	Status string          `json:"status"`
	Data   *storage.Rollup `json:"data"`
}

// HierarchyResponse wraps the containment tree.
type HierarchyResponse struct {
	Status string             `json:"status"`
	Data   *storage.Hierarchy `json:"data"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status   string                `json:"status"`
	Service  string                `json:"service"`
	Version  string                `json:"version"`
	Database *storage.DatabaseInfo `json:"database,omitempty"`
	Clients  int                   `json:"websocket_clients"`
	Error    string                `json:"error,omitempty"`
}
