// Package docs registers the OpenAPI description served under /docs.
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
        "/populate/{count}": {
            "post": {
                "description": "Streams the Land Registry feed and saves up to count records, one transaction per record. Malformed lines are skipped.",
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Populate records from the feed",
                "parameters": [
                    {"type": "integer", "description": "Number of records to save", "name": "count", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.PopulateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/get": {
            "get": {
                "description": "Returns records filtered by price and record status, capped by limit. Filters are combined with AND.",
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Query records",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of records", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Exact price", "name": "price", "in": "query"},
                    {"type": "string", "description": "Record status code", "name": "record_status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.RecordResponse"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/truncate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["records"],
                "summary": "Remove all records",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness and store reachability",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.StatusResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "error": {"type": "string"},
                "request_id": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "handler.PopulateResponse": {
            "type": "object",
            "properties": {
                "lines_read": {"type": "integer"},
                "requested": {"type": "integer"},
                "saved": {"type": "integer"},
                "skipped": {"type": "integer"}
            }
        },
        "handler.RecordResponse": {
            "type": "object",
            "properties": {
                "category_type": {"type": "string"},
                "date_of_transfer": {"type": "string"},
                "district": {"type": "string"},
                "duration": {"type": "integer"},
                "estate_type": {"type": "string"},
                "id": {"type": "string"},
                "is_residential": {"type": "string"},
                "locality": {"type": "string"},
                "paon": {"type": "string"},
                "postcode": {"type": "string"},
                "price": {"type": "integer"},
                "property_type": {"type": "string"},
                "record_status": {"type": "string"},
                "saon": {"type": "string"},
                "street": {"type": "string"},
                "town": {"type": "string"}
            }
        },
        "handler.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
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
	Title:            "Price Paid Data Ingestion API",
	Description:      "Populates, queries and truncates HM Land Registry price paid records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
