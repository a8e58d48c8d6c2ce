package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "INATA API",
        "description": "School administration backend: accounts, scheduling, grading, tuition and transcripts",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login, registration and tokens"},
        {"name": "Users", "description": "Account management"},
        {"name": "Invitations", "description": "Invitation-based onboarding"},
        {"name": "Classes", "description": "Class levels and tuition schedules"},
        {"name": "Subjects", "description": "Subjects and teaching units"},
        {"name": "Schedule", "description": "Weekly timetables"},
        {"name": "Grades", "description": "Evaluations and grade records"},
        {"name": "Fees", "description": "Monthly tuition ledger"},
        {"name": "Payments", "description": "Card checkout and cash payments"},
        {"name": "Transcripts", "description": "PDF transcripts"},
        {"name": "Salaries", "description": "Teacher salary rates and payouts"},
        {"name": "Events", "description": "School calendar events"},
        {"name": "Assignments", "description": "Published hand-outs"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register using an invitation token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid or used token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List accounts",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "class_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create an account",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly timetable of a class",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Schedule"],
                "summary": "Place a subject in a timetable cell",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/mine": {
            "get": {
                "tags": ["Fees"],
                "summary": "Tuition ledger of the calling student",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/checkout": {
            "post": {
                "tags": ["Payments"],
                "summary": "Open a hosted checkout session for unpaid fees",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckoutRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments/webhook": {
            "post": {
                "tags": ["Payments"],
                "summary": "Payment provider notification endpoint",
                "parameters": [
                    {"name": "Stripe-Signature", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Received"},
                    "400": {"description": "Bad signature or payload"}
                }
            }
        },
        "/transcripts/mine": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Download the calling student's transcript",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "school_year", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/promotion": {
            "post": {
                "tags": ["Users"],
                "summary": "Run the end-of-year promotion",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["token", "email", "password", "first_name", "last_name"],
            "properties": {
                "token": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "CheckoutRequest": {
            "type": "object",
            "required": ["fee_ids"],
            "properties": {
                "fee_ids": {"type": "array", "items": {"type": "string"}}
            }
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
