package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OpenLearn Insights API",
        "description": "Read-optimized reporting API over pipeline-produced learning analytics",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course activity and catalog metadata"},
        {"name": "Enrollment", "description": "Enrollment counts and demographic breakdowns"},
        {"name": "Engagement", "description": "Learner engagement timelines and aggregates"},
        {"name": "Problems", "description": "Problem response and grade distributions"},
        {"name": "Videos", "description": "Video viewing analytics"},
        {"name": "Reports", "description": "Asynchronous report exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/status": {
            "get": {
                "summary": "Aggregated instrumentation snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/activity": {
            "get": {
                "tags": ["Courses"],
                "summary": "Most recent weekly activity",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "activity_type", "in": "query", "type": "string", "enum": ["ACTIVE", "ATTEMPTED_PROBLEM", "PLAYED_VIDEO", "POSTED_FORUM"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No activity recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/summary": {
            "get": {
                "tags": ["Courses"],
                "summary": "Enrollment summary rows",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/programs": {
            "get": {
                "tags": ["Courses"],
                "summary": "Programs the course belongs to",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Daily enrollment counts",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "start_date", "in": "query", "type": "string", "format": "date"},
                    {"name": "end_date", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No enrollment data", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment/modes": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Enrollment by mode at the latest date",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment/genders": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Enrollment by cleaned gender at the latest date",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment/education": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Enrollment by education level at the latest date",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment/birth_years": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Enrollment by birth year at the latest date",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/enrollment/locations": {
            "get": {
                "tags": ["Enrollment"],
                "summary": "Enrollment by country at the latest date",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/learner_engagement": {
            "get": {
                "tags": ["Engagement"],
                "summary": "Per-learner engagement aggregates",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/engagement_ranges": {
            "get": {
                "tags": ["Engagement"],
                "summary": "Engagement metric range partitions",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/{course_id}/videos": {
            "get": {
                "tags": ["Videos"],
                "summary": "Videos of a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners/{username}/engagement_timeline": {
            "get": {
                "tags": ["Engagement"],
                "summary": "Daily engagement timeline for one learner",
                "parameters": [
                    {"name": "username", "in": "path", "required": true, "type": "string"},
                    {"name": "course_id", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing course_id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/problems/{module_id}/answer_distribution": {
            "get": {
                "tags": ["Problems"],
                "summary": "First and last answer counts per problem part",
                "parameters": [
                    {"name": "module_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Module not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/problems/{module_id}/grade_distribution": {
            "get": {
                "tags": ["Problems"],
                "summary": "Grade occurrence counts",
                "parameters": [
                    {"name": "module_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/problems/{module_id}/sequential_open": {
            "get": {
                "tags": ["Problems"],
                "summary": "View counts for a sequential module",
                "parameters": [
                    {"name": "module_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/problems/{module_id}/tags": {
            "get": {
                "tags": ["Problems"],
                "summary": "Per-tag submission counts",
                "parameters": [
                    {"name": "module_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/videos/{video_id}/timeline": {
            "get": {
                "tags": ["Videos"],
                "summary": "Per-segment viewing counts",
                "parameters": [
                    {"name": "video_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Video not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue an asynchronous report export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{job_id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "job_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Job not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Stream a finished report export",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["learner_engagement", "engagement_timeline"]},
                "course_id": {"type": "string"},
                "username": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "course_id", "format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
