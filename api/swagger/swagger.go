package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coursework API",
        "description": "Assignment and submission listings with server-side filtering, sorting and pagination.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Assignments", "description": "Course assignments"},
        {"name": "Submissions", "description": "Student submissions and grading"},
        {"name": "Files", "description": "Signed submission file downloads"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unavailable"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "statuses", "in": "query", "type": "string", "description": "Comma separated: draft,published,closed,archived"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "weekNumber", "in": "query", "type": "integer", "minimum": 1, "maximum": 53},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "dueDateFrom", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "dueDateTo", "in": "query", "type": "string", "format": "date-time"},
                    {"$ref": "#/parameters/sortBy"},
                    {"$ref": "#/parameters/sortOrder"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Envelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/Envelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/Envelope"}}
                }
            }
        },
        "/api/v1/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Assignments"],
                "summary": "Update assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid payload"}, "404": {"description": "Not found"}}
            },
            "delete": {
                "tags": ["Assignments"],
                "summary": "Delete assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/submissions": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List submissions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "assignmentId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "description": "Comma separated: submitted,graded,returned,late"},
                    {"name": "hasGrade", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "submittedAfter", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "submittedBefore", "in": "query", "type": "string", "format": "date-time"},
                    {"name": "includeVideoUrls", "in": "query", "type": "boolean"},
                    {"name": "videoUrlExpiry", "in": "query", "type": "integer", "description": "Seconds"},
                    {"$ref": "#/parameters/sortBy"},
                    {"$ref": "#/parameters/sortOrder"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/limit"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Envelope"}}, "400": {"description": "Invalid query"}}
            }
        },
        "/api/v1/submissions/export": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Export matching submissions",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"200": {"description": "File attachment"}, "403": {"description": "Forbidden"}}
            }
        },
        "/api/v1/submissions/{id}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Get submission",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/submissions/{id}/grade": {
            "put": {
                "tags": ["Submissions"],
                "summary": "Grade submission",
                "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/id"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRequest"}}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"},
                    "409": {"description": "Assignment has no maximum score"},
                    "422": {"description": "Grade out of range"}
                }
            }
        },
        "/api/v1/files/{token}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a submission file",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File contents"}, "403": {"description": "Invalid or expired link"}, "404": {"description": "File not found"}}
            }
        }
    },
    "parameters": {
        "id": {"name": "id", "in": "path", "required": true, "type": "string"},
        "sortBy": {"name": "sortBy", "in": "query", "type": "string", "enum": ["dueDate", "createdAt", "title", "maxScore", "status", "grade", "assignmentTitle", "submittedAt"], "description": "On submission lists dueDate and submittedAt both order by submission time."},
        "sortOrder": {"name": "sortOrder", "in": "query", "type": "string", "enum": ["asc", "desc"]},
        "page": {"name": "page", "in": "query", "type": "integer", "minimum": 1},
        "limit": {"name": "limit", "in": "query", "type": "integer", "minimum": 1}
    },
    "definitions": {
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "meta": {"type": "object"}
            }
        },
        "GradeRequest": {
            "type": "object",
            "required": ["grade"],
            "properties": {
                "grade": {"type": "number"},
                "feedback": {"type": "string"},
                "status": {"type": "string", "enum": ["graded", "returned"]},
                "rubricScores": {"type": "object"},
                "instructorNotes": {"type": "string"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
