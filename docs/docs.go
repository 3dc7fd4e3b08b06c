// Package docs регистрирует описание API для swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход администратора",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}
                ],
                "responses": {
                    "200": {"description": "Успешный вход", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Выход администратора",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет активной сессии", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Текущая сессия",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Нет активной сессии", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/defaulters": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Defaulters"],
                "summary": "Список должников",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/view.Card"}}}
                }
            }
        },
        "/defaulters/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Defaulters"],
                "summary": "Поток списка должников",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/view.Card"}}}
                }
            }
        },
        "/defaulters/{id}/reports": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Defaulters"],
                "summary": "Пожаловаться на должника",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.DummyReport"}}
                ],
                "responses": {
                    "200": {"description": "Жалоба принята", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Должник не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/admin/defaulters": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Все записи",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/view.Card"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Добавить должника",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.DummyDefaulter"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/view.Card"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/admin/defaulters/stream": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["Admin"],
                "summary": "Поток всех записей",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/view.Card"}}}
                }
            }
        },
        "/admin/defaulters/{id}/enabled": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Показать или скрыть должника",
                "parameters": [
                    {"type": "string", "in": "path", "name": "id", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/setenabled.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Должник не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Хранилище недоступно", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/admin/assets": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Загрузить фотографию",
                "parameters": [
                    {"type": "file", "in": "formData", "name": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "413": {"description": "Файл слишком большой", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Файл не является изображением", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "setenabled.Request": {
            "type": "object",
            "required": ["enabled"],
            "properties": {
                "enabled": {"type": "boolean"}
            }
        },
        "models.DummyDefaulter": {
            "type": "object",
            "required": ["amount", "currency", "duration", "duration_unit", "image", "name"],
            "properties": {
                "name": {"type": "string"},
                "image": {"type": "string"},
                "amount": {"type": "string", "example": "1500.00"},
                "currency": {"type": "string", "enum": ["USD", "EUR", "GBP", "GHS", "JPY", "AUD", "CAD"]},
                "duration": {"type": "integer"},
                "duration_unit": {"type": "string", "enum": ["minutes", "hours", "days"]}
            }
        },
        "models.DummyReport": {
            "type": "object",
            "required": ["contact_number", "message"],
            "properties": {
                "contact_number": {"type": "string", "maxLength": 32},
                "message": {"type": "string", "maxLength": 2000}
            }
        },
        "view.Card": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string", "example": "Jane Doe"},
                "image": {"type": "string"},
                "blurred": {"type": "boolean"},
                "amount": {"type": "string", "example": "1234.50"},
                "currency": {"type": "string", "example": "USD"},
                "amount_display": {"type": "string", "example": "$1,234.50"},
                "end_time": {"type": "string"},
                "countdown": {
                    "type": "object",
                    "properties": {
                        "days": {"type": "integer"},
                        "hours": {"type": "integer"},
                        "minutes": {"type": "integer"},
                        "seconds": {"type": "integer"},
                        "expired": {"type": "boolean"}
                    }
                },
                "countdown_display": {"type": "string", "example": "02:00:00"},
                "enabled": {"type": "boolean"},
                "is_expired": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid request body"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "LendLens API",
	Description:      "Публичный список должников с таймером раскрытия фотографии и панель администратора.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
