package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Gradebook API",
        "description": "Grade recording, subject averages and at-risk reporting",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/students": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List students",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Name or national id"
                    },
                    {
                        "name": "gradeLevel",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grade level"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Section"
                    },
                    {
                        "name": "active",
                        "in": "query",
                        "type": "boolean",
                        "required": false,
                        "description": "Active state"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Enroll student",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateStudentRequest"
                        }
                    }
                ]
            }
        },
        "/students/{id}": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Get student",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Students"
                ],
                "summary": "Deactivate student",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    }
                ]
            }
        },
        "/students/{id}/grades": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List a student's grades",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    },
                    {
                        "name": "periodId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Limit to one period"
                    }
                ]
            }
        },
        "/students/{id}/averages": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Subject averages and general average",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    },
                    {
                        "name": "periodId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grading period, defaults to the active one"
                    }
                ]
            }
        },
        "/subjects": {
            "get": {
                "tags": [
                    "Subjects"
                ],
                "summary": "List subjects",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "gradeLevel",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grade level"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Section"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Teacher"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Subjects"
                ],
                "summary": "Create subject",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateSubjectRequest"
                        }
                    }
                ]
            }
        },
        "/subjects/{id}": {
            "get": {
                "tags": [
                    "Subjects"
                ],
                "summary": "Get subject",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    }
                ]
            }
        },
        "/periods": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "List grading periods",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            },
            "post": {
                "tags": [
                    "Periods"
                ],
                "summary": "Create grading period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreatePeriodRequest"
                        }
                    }
                ]
            }
        },
        "/periods/active": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "Current grading period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/periods/{id}": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "Get grading period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Identifier"
                    }
                ]
            }
        },
        "/evaluation-types": {
            "get": {
                "tags": [
                    "Periods"
                ],
                "summary": "List evaluation types",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            },
            "post": {
                "tags": [
                    "Periods"
                ],
                "summary": "Create evaluation type",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateEvaluationTypeRequest"
                        }
                    }
                ]
            }
        },
        "/grades": {
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Record a grade and refresh the subject average",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RecordGradeRequest"
                        }
                    }
                ]
            }
        },
        "/averages/recompute": {
            "post": {
                "tags": [
                    "Averages"
                ],
                "summary": "Recompute one subject average",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AverageKey"
                        }
                    }
                ]
            }
        },
        "/averages/rebuild": {
            "post": {
                "tags": [
                    "Averages"
                ],
                "summary": "Rebuild every subject average",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/risk/at-risk": {
            "get": {
                "tags": [
                    "Risk"
                ],
                "summary": "Students below the at-risk threshold",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "periodId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grading period, defaults to the active one"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "required": false,
                        "description": "Threshold"
                    }
                ]
            }
        },
        "/risk/at-risk/export": {
            "get": {
                "tags": [
                    "Risk"
                ],
                "summary": "Download the at-risk list",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "periodId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grading period, defaults to the active one"
                    },
                    {
                        "name": "threshold",
                        "in": "query",
                        "type": "number",
                        "required": false,
                        "description": "Threshold"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv or pdf"
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ]
            }
        },
        "/risk/distribution": {
            "get": {
                "tags": [
                    "Risk"
                ],
                "summary": "Students per performance category",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "periodId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Grading period, defaults to the active one"
                    }
                ]
            }
        },
        "/classify": {
            "get": {
                "tags": [
                    "Risk"
                ],
                "summary": "Performance category for an average",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                },
                "parameters": [
                    {
                        "name": "average",
                        "in": "query",
                        "type": "number",
                        "required": true,
                        "description": "Average"
                    }
                ]
            }
        },
        "/ops/summary": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Aggregated service counters",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        }
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "first_name": {
                    "type": "string"
                },
                "last_name": {
                    "type": "string"
                },
                "national_id": {
                    "type": "string"
                },
                "grade_level": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                }
            },
            "required": [
                "first_name",
                "last_name",
                "national_id",
                "grade_level",
                "section"
            ]
        },
        "CreateSubjectRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                },
                "grade_level": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "teacher_id": {
                    "type": "string"
                }
            },
            "required": [
                "name",
                "code",
                "grade_level",
                "section"
            ]
        },
        "CreatePeriodRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string",
                    "format": "date"
                },
                "end_date": {
                    "type": "string",
                    "format": "date"
                },
                "active": {
                    "type": "boolean"
                }
            },
            "required": [
                "name",
                "start_date",
                "end_date"
            ]
        },
        "CreateEvaluationTypeRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "weight": {
                    "type": "number"
                }
            },
            "required": [
                "name"
            ]
        },
        "RecordGradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {
                    "type": "string"
                },
                "subject_id": {
                    "type": "string"
                },
                "teacher_id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                },
                "evaluation_type_id": {
                    "type": "string"
                },
                "score": {
                    "type": "number"
                },
                "evaluated_on": {
                    "type": "string",
                    "format": "date"
                },
                "notes": {
                    "type": "string"
                }
            },
            "required": [
                "student_id",
                "subject_id",
                "period_id",
                "evaluation_type_id",
                "score"
            ]
        },
        "AverageKey": {
            "type": "object",
            "properties": {
                "student_id": {
                    "type": "string"
                },
                "subject_id": {
                    "type": "string"
                },
                "period_id": {
                    "type": "string"
                }
            },
            "required": [
                "student_id",
                "subject_id",
                "period_id"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
