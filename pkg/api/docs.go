package api

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
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Get the health status of the API",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/convert": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Convert the request body from the tabular test-results layout to an STDF v4 stream",
                "consumes": ["text/csv"],
                "produces": ["application/octet-stream"],
                "tags": ["convert"],
                "summary": "Convert a CSV table",
                "parameters": [
                    {"description": "CSV table", "name": "body", "in": "body", "required": true, "schema": {"type": "string"}},
                    {"type": "string", "description": "Input name recorded in the ATR", "name": "name", "in": "query"},
                    {"type": "integer", "description": "Test head number", "name": "head", "in": "query"},
                    {"type": "integer", "description": "Test site number", "name": "site", "in": "query"},
                    {"type": "integer", "description": "Generation time in unix seconds", "name": "timestamp", "in": "query"},
                    {"type": "string", "description": "Source label recorded in the ATR", "name": "label", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Extra ATR entries", "name": "note", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "file"},
                        "headers": {
                            "X-Conversion-Id": {"type": "string", "description": "Conversion id"},
                            "X-Device-Count": {"type": "integer", "description": "Number of devices"},
                            "X-Lot-Disposition": {"type": "string", "description": "P or F"}
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/conversions": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "List the most recent conversions, newest first",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "List conversions",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of entries (default 100)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/conversions/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Get the stored summary of one conversion",
                "produces": ["application/json"],
                "tags": ["history"],
                "summary": "Get a conversion",
                "parameters": [
                    {"type": "string", "description": "Conversion id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.Entry"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "storage.Entry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "input": {"type": "string"},
                "output": {"type": "string"},
                "status": {"type": "string"},
                "error": {"type": "string"},
                "devices": {"type": "integer"},
                "good": {"type": "integer"},
                "measurements": {"type": "integer"},
                "records": {"type": "integer"},
                "bytes": {"type": "integer"},
                "disposition": {"type": "string"},
                "started_at": {"type": "string"},
                "duration_ns": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "csv2stdf REST API",
	Description:      "Converts tabular semiconductor test results to STDF v4.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
