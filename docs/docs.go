package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "VenuePulse Backend",
    "description": "Dashboard metrics for hospitality venues: totals, trends, sparklines and per-venue breakdowns",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {
      "get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}
    },
    "/api/venues": {
      "get": {"tags": ["venues"], "summary": "List venues", "responses": {"200": {"description": "OK"}}}
    },
    "/api/stats": {
      "get": {
        "tags": ["stats"],
        "summary": "Dashboard snapshot",
        "parameters": [
          {"name": "venue_id", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
          {"name": "range", "in": "query", "type": "string", "enum": ["today", "yesterday", "last7", "last14", "last30", "all", "custom"], "default": "last7"},
          {"name": "from", "in": "query", "type": "string", "format": "date"},
          {"name": "to", "in": "query", "type": "string", "format": "date"},
          {"name": "normalize", "in": "query", "type": "boolean"}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "INVALID_RANGE or VALIDATION_ERROR"}}
      }
    },
    "/api/venues/{id}/stats": {
      "get": {
        "tags": ["stats"],
        "summary": "Single venue snapshot",
        "parameters": [
          {"name": "id", "in": "path", "required": true, "type": "string"},
          {"name": "range", "in": "query", "type": "string", "default": "last7"},
          {"name": "from", "in": "query", "type": "string", "format": "date"},
          {"name": "to", "in": "query", "type": "string", "format": "date"},
          {"name": "normalize", "in": "query", "type": "boolean"}
        ],
        "responses": {"200": {"description": "OK"}, "400": {"description": "INVALID_RANGE or VALIDATION_ERROR"}}
      }
    },
    "/api/import": {
      "post": {
        "tags": ["import"],
        "summary": "Import CSV data",
        "consumes": ["multipart/form-data"],
        "parameters": [
          {"name": "X-Admin-Key", "in": "header", "type": "string"},
          {"name": "venues", "in": "formData", "type": "file"},
          {"name": "feedback", "in": "formData", "type": "file"},
          {"name": "assistance", "in": "formData", "type": "file"},
          {"name": "nps", "in": "formData", "type": "file"}
        ],
        "responses": {"200": {"description": "Import summary"}, "400": {"description": "CSV_PARSE_ERROR"}}
      }
    },
    "/api/imports/latest": {
      "get": {"tags": ["import"], "summary": "Latest import run", "responses": {"200": {"description": "OK"}, "404": {"description": "No imports"}}}
    },
    "/api/cache/invalidate": {
      "post": {"tags": ["stats"], "summary": "Drop cached snapshots", "responses": {"200": {"description": "OK"}}}
    }
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
