// Package docs registers the OpenAPI document of the order service.
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
        "/orders": {
            "post": {
                "description": "Checks the customer and product stock, stores the order and decrements stock.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create an order",
                "parameters": [
                    {"type": "string", "description": "replay key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "order", "name": "body", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/order.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/order.Order"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/order.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/order.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/order.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/order.ErrorResponse"}}
                }
            }
        },
        "/orders/customer/{customer_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the orders of a customer",
                "parameters": [
                    {"type": "string", "description": "customer id", "name": "customer_id", "in": "path", "required": true},
                    {"type": "integer", "description": "page size (1..100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.ListResponse"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get an order with its items",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/order.Order"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/order.ErrorResponse"}}
                }
            }
        },
        "/orders/{id}/items": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List the items of an order",
                "parameters": [
                    {"type": "string", "description": "order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {
                        "type": "array", "items": {"$ref": "#/definitions/order.Item"}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/order.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "order.CreateOrderRequest": {
            "type": "object",
            "required": ["customer_id", "products"],
            "properties": {
                "customer_id": {"type": "string", "example": "b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"},
                "products": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/order.RequestedProduct"}}
            }
        },
        "order.RequestedProduct": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string", "example": "4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"},
                "quantity": {"type": "integer", "minimum": 1, "example": 2}
            }
        },
        "order.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "reason": {"type": "string", "enum": ["customer_not_found", "products_not_found", "product_not_found", "insufficient_stock"]},
                "order_id": {"type": "string"}
            }
        },
        "order.Item": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "order_id": {"type": "string"},
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "price": {"type": "string", "example": "10.00"}
            }
        },
        "order.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "customer_id": {"type": "string"},
                "total": {"type": "string", "example": "20.00"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Item"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "order.ListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/order.Order"}}
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
	Title:            "Ordenes Checkout API",
	Description:      "Order creation over the customer and product services.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
