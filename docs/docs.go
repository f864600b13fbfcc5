// Package docs registers the Swagger description of the Fibertrack API with
// swag so echo-swagger can serve it under /docs/.
//
// Regenerate with: swag init -g internal/api/server.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/{kind}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entities"],
                "summary": "List entities of a collection",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"},
                    {"type": "string", "name": "filter", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query", "description": "column|asc or column|dsc"},
                    {"type": "string", "name": "status", "in": "query", "description": "comma separated: active, archived, deleted"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ListResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entities"],
                "summary": "Create an entity",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"name": "entity", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.ItemResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/api/v1/{kind}/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["entities"],
                "summary": "Get an entity, soft-deleted included",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["entities"],
                "summary": "Update an entity",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "entity", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["lifecycle"],
                "summary": "Soft-delete an entity",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/api/v1/{kind}/{id}/{action}": {
            "patch": {
                "produces": ["application/json"],
                "tags": ["lifecycle"],
                "summary": "Archive, unarchive or restore an entity",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "enum": ["archive", "unarchive", "restore"], "name": "action", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.ItemResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/api/v1/{kind}/bulk": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["lifecycle"],
                "summary": "Apply archive, delete or restore to a set of ids",
                "parameters": [
                    {"type": "string", "name": "kind", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/storage.BulkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.BulkResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIError"}}
                }
            }
        },
        "/api/v1/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Network rollup",
                "parameters": [
                    {"type": "integer", "name": "location_id", "in": "query"},
                    {"type": "boolean", "name": "exclude_archived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.StatsResponse"}}
                }
            }
        },
        "/api/v1/hierarchy": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Containment tree per location",
                "parameters": [
                    {"type": "integer", "name": "location_id", "in": "query"},
                    {"type": "boolean", "name": "exclude_archived", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HierarchyResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "details": {"type": "string"},
                "field_errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "context": {"type": "object"}
            }
        },
        "api.ListResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"type": "array", "items": {"type": "object"}},
                "meta": {"$ref": "#/definitions/storage.PageMeta"}
            }
        },
        "api.ItemResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"type": "object"},
                "message": {"type": "string"}
            }
        },
        "api.BulkResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"$ref": "#/definitions/storage.BulkResult"},
                "message": {"type": "string"}
            }
        },
        "api.StatsResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "api.HierarchyResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "storage.BulkRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["archive", "delete", "restore"]},
                "ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "storage.BulkResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "processed": {"type": "array", "items": {"type": "integer"}},
                "skipped": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "storage.PageMeta": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "last_page": {"type": "integer"},
                "from": {"type": "integer"},
                "to": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Fibertrack API",
	Description:      "FTTH network inventory: sites, splitters, cables, tubes, cores, distribution points and subscribers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
