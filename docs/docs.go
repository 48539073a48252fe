// Package docs serves the OpenAPI description of the order API.
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
    "paths": {
        "/api/boxes/{outpoint}": {
            "get": {
                "summary": "Indexed box",
                "parameters": [
                    {"type": "string", "description": "txid and vout, hex", "name": "outpoint", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Box"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/api/orders/{outpoint}/spec": {
            "get": {
                "summary": "Spec a box must satisfy to fulfill the order",
                "parameters": [
                    {"type": "string", "description": "order outpoint", "name": "outpoint", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Not an order"}
                }
            }
        },
        "/api/orders/{outpoint}/counterparty": {
            "get": {
                "summary": "First indexed box that fulfills the order",
                "parameters": [
                    {"type": "string", "description": "order outpoint", "name": "outpoint", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Box"}},
                    "404": {"description": "No counterparty"}
                }
            }
        },
        "/api/sell": {
            "post": {
                "summary": "Build a transaction opening a sell order",
                "consumes": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/broadcast.Event"}},
                    "422": {"description": "Unprocessable"}
                }
            }
        },
        "/api/swap": {
            "post": {
                "summary": "Build a transaction opening a swap order",
                "consumes": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/broadcast.Event"}},
                    "422": {"description": "Unprocessable"}
                }
            }
        },
        "/api/orders/{outpoint}/reclaim": {
            "post": {
                "summary": "Build a transaction returning an order to its owner",
                "parameters": [
                    {"type": "string", "description": "order outpoint", "name": "outpoint", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/broadcast.Event"}}
                }
            }
        },
        "/api/orders/{outpoint}/execute": {
            "post": {
                "summary": "Build a transaction fulfilling an order",
                "description": "Without a counterparty the index is searched for one.",
                "parameters": [
                    {"type": "string", "description": "order outpoint", "name": "outpoint", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/broadcast.Event"}},
                    "409": {"description": "Counterparty does not match"}
                }
            }
        }
    },
    "definitions": {
        "models.Token": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "amount": {"type": "integer"}
            }
        },
        "models.Box": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "address": {"type": "string"},
                "value": {"type": "integer"},
                "tokens": {"type": "array", "items": {"$ref": "#/definitions/models.Token"}},
                "registers": {"type": "array", "items": {"type": "object"}},
                "height": {"type": "integer"}
            }
        },
        "broadcast.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "action": {"type": "string"},
                "txid": {"type": "string"},
                "rawtx": {"type": "string"},
                "tx": {"type": "object"}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "UTXO Orders API",
	Description:      "Builds unsigned sell and swap order transactions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
