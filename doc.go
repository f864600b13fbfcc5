// Package fibertrack is an inventory service for fiber-to-the-home networks.
//
// # Overview
//
// Fibertrack records the physical plant of an FTTH deployment as a strict
// containment hierarchy and serves it over a REST API:
//
//	Location
//	 └─ Splitter (1:2 … 1:128)
//	     └─ Cable (tube_count × cores_per_tube)
//	         └─ Tube (color)
//	             └─ Core (color)
//	                 └─ Distribution Point (one per core)
//	                     └─ Subscriber (one per distribution point)
//
// Distribution points and subscribers also belong to a location directly, so
// a drop can be registered before it is spliced.
//
// # Architecture
//
//	┌─────────────────┐       ┌─────────────────┐
//	│  fibertrack CLI │       │  WebSocket feed │
//	│ (stats, tree)   │       │  (/ws/events)   │
//	└────────┬────────┘       └────────▲────────┘
//	         │                         │
//	┌────────▼─────────────────────────┴──┐
//	│  API Server (Echo REST, /api/v1)    │
//	└────────┬────────────────────────────┘
//	         │
//	┌────────▼──────────┐
//	│  Storage Layer    │
//	│  (GORM: SQLite,   │
//	│  Postgres, MySQL) │
//	└───────────────────┘
//
// # Lifecycle
//
// Every entity below Location carries two independent lifecycle fields:
// status (active or archived) and deleted_at. Listings filter on the derived
// visibility class:
//
//	deleted   deleted_at is set
//	archived  status=archived and not deleted
//	active    status=active and not deleted
//
// Archive and unarchive only touch status; delete and restore only touch
// deleted_at. Rows are never destroyed. Bulk restore additionally forces
// status back to active.
//
// # Usage
//
// Start the API server:
//
//	fibertrack server --config configs/config.yaml
//
// Print the network rollup or the full tree:
//
//	fibertrack stats --format table
//	fibertrack tree --location 1
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml, configs/config.yaml, ~/.fibertrack, /etc/fibertrack)
//   - Environment variables (FT_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  port: 8080
//	database:
//	  driver: postgres
//	  dsn: host=localhost user=fiber dbname=fiber sslmode=disable
//	query:
//	  default_per_page: 15
//	  max_per_page: 100
//
// # API Endpoints
//
// Per collection (locations, splitters, cables, tubes, cores,
// distribution-points, subscribers):
//   - GET    /api/v1/{kind}                  - List (page, per_page, filter, sort, status)
//   - POST   /api/v1/{kind}                  - Create
//   - GET    /api/v1/{kind}/:id              - Get, soft-deleted included
//   - PUT    /api/v1/{kind}/:id              - Partial update
//   - GET    /api/v1/{kind}/:id/children     - Immediate children
//
// Lifecycle (every collection except locations):
//   - PATCH  /api/v1/{kind}/:id/archive
//   - PATCH  /api/v1/{kind}/:id/unarchive
//   - PATCH  /api/v1/{kind}/:id/restore
//   - DELETE /api/v1/{kind}/:id
//   - POST   /api/v1/{kind}/bulk             - {"action": "archive|delete|restore", "ids": [...]}
//
// Reports:
//   - GET /api/v1/stats                     - Counts and utilization
//   - GET /api/v1/hierarchy                 - Containment tree
//
// Operations:
//   - GET /health, GET /metrics, GET /docs/*, GET /ws/events
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o fibertrack ./cmd/fibertrack
package fibertrack
