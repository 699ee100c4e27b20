package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ECDE & VOTMIS API",
        "description": "Learner registry for ECDE centres and vocational training institutions: UPI issuance, transfers, deceased register and institution records.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Persons", "description": "ECDE learners and vocational students"},
        {"name": "Lifecycle", "description": "Release, receive and death recording"},
        {"name": "Reports", "description": "Dashboard, admissions and registers"},
        {"name": "Institutions", "description": "Institution profiles"},
        {"name": "Records", "description": "Bank accounts, books, infrastructure, emergencies and capitation"},
        {"name": "Files", "description": "Signed downloads"}
    ],
    "paths": {
        "/persons": {
            "get": {
                "tags": ["Persons"],
                "summary": "Search the learner directory",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "programType", "in": "query", "type": "string", "enum": ["ecde", "vocational", "all"]},
                    {"name": "gender", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "admissionYear", "in": "query", "type": "integer"},
                    {"name": "minAge", "in": "query", "type": "integer"},
                    {"name": "maxAge", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["recent"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"$ref": "#/parameters/ActingInstitution"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Upstream fetch failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Persons"],
                "summary": "Register a person and issue a UPI",
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterPersonRequest"}},
                    {"$ref": "#/parameters/ActingInstitution"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "UPI space exhausted or conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons/{program}/{id}": {
            "get": {
                "tags": ["Persons"],
                "summary": "Get a person",
                "parameters": [
                    {"$ref": "#/parameters/Program"},
                    {"$ref": "#/parameters/ID"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Persons"],
                "summary": "Update bio data",
                "parameters": [
                    {"$ref": "#/parameters/Program"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePersonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons/{program}/{id}/photo": {
            "post": {
                "tags": ["Persons"],
                "summary": "Upload a passport photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/Program"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "photo", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons/{program}/{id}/release": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Release a person to another institution",
                "parameters": [
                    {"$ref": "#/parameters/Program"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReleasePersonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/persons/{program}/{id}/death": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Record the death of a person",
                "parameters": [
                    {"$ref": "#/parameters/Program"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordDeathRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Date and cause required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already deceased", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/upi/{upi}": {
            "get": {
                "tags": ["Persons"],
                "summary": "Look a person up by UPI",
                "parameters": [
                    {"name": "upi", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transfers": {
            "get": {
                "tags": ["Lifecycle"],
                "summary": "List transfers",
                "parameters": [
                    {"name": "direction", "in": "query", "type": "string", "enum": ["outgoing", "incoming"]},
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "completed"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transfers/receive": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Receive a released person",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReceivePersonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Addressed elsewhere or not released", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Reports"],
                "summary": "Institution dashboard counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/admissions": {
            "get": {
                "tags": ["Reports"],
                "summary": "Admission summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/upi-register": {
            "get": {
                "tags": ["Reports"],
                "summary": "UPI register including deceased persons",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "programType", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/upi-register/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download the UPI register",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "programType", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/reports/deceased": {
            "get": {
                "tags": ["Reports"],
                "summary": "Deceased register",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institutions": {
            "get": {
                "tags": ["Institutions"],
                "summary": "List institutions",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Institutions"],
                "summary": "Create an institution",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InstitutionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/institutions/{id}": {
            "get": {
                "tags": ["Institutions"],
                "summary": "Get an institution",
                "parameters": [{"$ref": "#/parameters/ID"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Institutions"],
                "summary": "Update an institution profile",
                "parameters": [
                    {"$ref": "#/parameters/ID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InstitutionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}": {
            "get": {
                "tags": ["Records"],
                "summary": "List institution records",
                "parameters": [{"$ref": "#/parameters/RecordKind"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Records"],
                "summary": "Create an institution record",
                "parameters": [
                    {"$ref": "#/parameters/RecordKind"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}/{id}": {
            "put": {
                "tags": ["Records"],
                "summary": "Replace an institution record",
                "parameters": [
                    {"$ref": "#/parameters/RecordKind"},
                    {"$ref": "#/parameters/ID"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/capitation/{id}/document": {
            "post": {
                "tags": ["Records"],
                "summary": "Attach a capitation receipt document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"$ref": "#/parameters/ID"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{token}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a stored file through a signed token",
                "security": [],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "Program": {"name": "program", "in": "path", "required": true, "type": "string", "enum": ["ecde", "vocational"]},
        "ID": {"name": "id", "in": "path", "required": true, "type": "integer"},
        "RecordKind": {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["bank-accounts", "books", "infrastructure", "emergencies", "capitation"]},
        "ActingInstitution": {"name": "X-Institution-ID", "in": "header", "type": "integer", "description": "Institution a super admin acts for; the institutionId query parameter is equivalent"}
    },
    "definitions": {
        "RegisterPersonRequest": {
            "type": "object",
            "properties": {
                "program": {"type": "string", "enum": ["ecde", "vocational"]},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "otherName": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female"]},
                "dateOfBirth": {"type": "string", "format": "date"},
                "admissionDate": {"type": "string", "format": "date"}
            },
            "required": ["program", "firstName", "lastName", "gender", "dateOfBirth"]
        },
        "UpdatePersonRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "otherName": {"type": "string"},
                "gender": {"type": "string"},
                "dateOfBirth": {"type": "string", "format": "date"},
                "admissionDate": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["enrolled", "graduated", "suspended"]}
            }
        },
        "ReleasePersonRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"},
                "destinationInstitutionId": {"type": "integer"},
                "effectiveDate": {"type": "string", "format": "date"},
                "notes": {"type": "string"}
            },
            "required": ["reason"]
        },
        "ReceivePersonRequest": {
            "type": "object",
            "properties": {
                "upi": {"type": "string"}
            },
            "required": ["upi"]
        },
        "RecordDeathRequest": {
            "type": "object",
            "properties": {
                "dateOfDeath": {"type": "string", "format": "date"},
                "causeOfDeath": {"type": "string"},
                "details": {"type": "string"}
            },
            "required": ["dateOfDeath", "causeOfDeath"]
        },
        "InstitutionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "level": {"type": "string"},
                "uniqueCode": {"type": "string"},
                "registrationNo": {"type": "string"},
                "county": {"type": "string"},
                "subcounty": {"type": "string"},
                "ward": {"type": "string"}
            },
            "required": ["name"]
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
