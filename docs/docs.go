// Package docs registers the OpenAPI description of the reviewhub API with
// swag, so http-swagger can serve it under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/reviews/latest": {
            "get": {
                "summary": "Latest reviews",
                "description": "All reviews, newest first. Pass nextCursor back as cursor to continue; page is ignored when a cursor is present.",
                "produces": ["application/json"],
                "tags": ["reviews"],
                "parameters": [
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "items per page, clamped to the configured maximum", "name": "pageSize", "in": "query"},
                    {"type": "string", "description": "nextCursor of the previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PageResponse"}},
                    "400": {"description": "invalid page, pageSize or cursor", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "503": {"description": "database unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/feed": {
            "get": {
                "summary": "Follow feed",
                "description": "Reviews written by users the caller follows, newest first.",
                "produces": ["application/json"],
                "tags": ["reviews"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"type": "integer", "description": "1-based page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "items per page, clamped to the configured maximum", "name": "pageSize", "in": "query"},
                    {"type": "string", "description": "nextCursor of the previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PageResponse"}},
                    "400": {"description": "invalid page, pageSize or cursor", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "missing or invalid bearer token", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/search": {
            "get": {
                "summary": "Search subjects and reviews",
                "description": "Ranked union of matching subjects and reviews. Later pages are reached through nextCursor only; no total is reported.",
                "produces": ["application/json"],
                "tags": ["search"],
                "parameters": [
                    {"type": "string", "description": "search text, at most 256 characters", "name": "query", "in": "query", "required": true},
                    {"type": "string", "description": "all, subject, review or a comma separated list", "name": "type", "in": "query"},
                    {"type": "string", "enum": ["relevance", "latest"], "description": "result order", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "items per page, clamped to the configured maximum", "name": "limit", "in": "query"},
                    {"type": "string", "description": "nextCursor of the previous page", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PageResponse"}},
                    "400": {"description": "invalid query, type, sort, limit or cursor", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "rate limit exceeded", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {"summary": "Health report", "tags": ["ops"], "produces": ["application/json"],
                "responses": {"200": {"description": "healthy or degraded"}, "503": {"description": "unhealthy"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness probe", "tags": ["ops"], "responses": {"200": {"description": "ready"}, "503": {"description": "not ready"}}}
        },
        "/live": {
            "get": {"summary": "Liveness probe", "tags": ["ops"], "responses": {"200": {"description": "alive"}}}
        }
    },
    "definitions": {
        "Item": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["subject", "review"]},
                "id": {"type": "integer"},
                "subjectId": {"type": "integer"},
                "reviewId": {"type": "integer"},
                "authorId": {"type": "integer"},
                "rating": {"type": "integer"},
                "title": {"type": "string"},
                "subtitle": {"type": "string"},
                "excerpt": {"type": "string"},
                "score": {"type": "number"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "PageResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/Item"}},
                "totalCount": {"type": "integer", "description": "offset endpoints only"},
                "hasMore": {"type": "boolean"},
                "nextCursor": {"type": "string", "x-nullable": true}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds the values substituted into docTemplate.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "reviewhub API",
	Description:      "Read API over subjects and reviews with cursor-based ranked pagination.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
