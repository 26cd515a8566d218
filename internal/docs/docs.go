// Package docs provides API documentation
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
        "/categories": {
            "get": {
                "description": "Category navigation tree in catalog order",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List categories",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/CategoryNode"}}
                    },
                    "503": {
                        "description": "Catalog unavailable",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/items": {
            "get": {
                "description": "Items of the selection grouped by subcategory, with ownership flags and per-group counts",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "parameters": [
                    {"type": "string", "description": "Category filter", "name": "category", "in": "query"},
                    {"type": "string", "description": "Subcategory filter (needs category)", "name": "sub", "in": "query"}
                ],
                "summary": "List items",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/GroupView"}}
                    },
                    "503": {
                        "description": "Catalog unavailable",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/owned": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ownership"],
                "summary": "List owned keys",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {"keys": {"type": "array", "items": {"type": "string"}}}
                        }
                    }
                }
            },
            "delete": {
                "description": "Removes every owned key",
                "produces": ["application/json"],
                "tags": ["ownership"],
                "parameters": [
                    {"type": "boolean", "description": "Must be true", "name": "confirm", "in": "query", "required": true}
                ],
                "summary": "Reset ownership",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {
                        "description": "Not confirmed",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/owned/{key}/toggle": {
            "post": {
                "description": "Flips ownership of an item id, or of an itemID_variant key for variant items",
                "produces": ["application/json"],
                "tags": ["ownership"],
                "parameters": [
                    {"type": "string", "description": "Ownership key", "name": "key", "in": "path", "required": true}
                ],
                "summary": "Toggle ownership",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "key": {"type": "string", "example": "MF01_red"},
                                "owned": {"type": "boolean", "example": true}
                            }
                        }
                    },
                    "404": {
                        "description": "Unknown key",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "503": {
                        "description": "Catalog unavailable",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["progress"],
                "summary": "Overall and per-category progress",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ProgressView"}},
                    "503": {
                        "description": "Catalog unavailable",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/progress/chart": {
            "get": {
                "produces": ["text/html"],
                "tags": ["progress"],
                "summary": "Per-category progress bar chart",
                "responses": {
                    "200": {"description": "HTML page"}
                }
            }
        },
        "/themes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["render"],
                "summary": "Stats card themes, addressed by index",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Theme"}}}
                }
            }
        },
        "/render": {
            "post": {
                "description": "Renders the owned items as a JPEG collage and the progress as a PNG stats card",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["render"],
                "parameters": [
                    {"description": "Display options and theme index", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/RenderRequest"}}
                ],
                "summary": "Render images",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RenderResult"}},
                    "400": {
                        "description": "Bad options or theme",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    },
                    "422": {
                        "description": "No owned items",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/render/{kind}": {
            "get": {
                "produces": ["image/jpeg", "image/png"],
                "tags": ["render"],
                "parameters": [
                    {"type": "string", "enum": ["collection", "stats"], "name": "kind", "in": "path", "required": true},
                    {"type": "boolean", "description": "Send as attachment", "name": "download", "in": "query"}
                ],
                "summary": "Latest rendered image",
                "responses": {
                    "200": {"description": "Image bytes"},
                    "404": {
                        "description": "Nothing rendered yet",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        },
        "/render/{kind}/preview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["render"],
                "parameters": [
                    {"type": "string", "enum": ["collection", "stats"], "name": "kind", "in": "path", "required": true}
                ],
                "summary": "Latest rendered image as a data URL",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "properties": {
                                "id": {"type": "string"},
                                "file_name": {"type": "string"},
                                "created_at": {"type": "string"},
                                "data_url": {"type": "string"}
                            }
                        }
                    },
                    "404": {
                        "description": "Nothing rendered yet",
                        "schema": {"$ref": "#/definitions/ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "CategoryNode": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Figures"},
                "sub_categories": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Summary": {
            "type": "object",
            "properties": {
                "owned": {"type": "integer", "example": 3},
                "total": {"type": "integer", "example": 7},
                "percent": {"type": "integer", "example": 43}
            }
        },
        "ItemView": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "MF01"},
                "category": {"type": "string"},
                "sub_category": {"type": "string"},
                "name_ko": {"type": "string"},
                "name_jp": {"type": "string"},
                "price": {"type": "string"},
                "image": {"type": "string"},
                "owned": {"type": "boolean"},
                "variant_class": {"type": "boolean"},
                "owned_variants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "GroupView": {
            "type": "object",
            "properties": {
                "key": {"type": "string", "example": "Series 1"},
                "count": {"$ref": "#/definitions/Summary"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/ItemView"}}
            }
        },
        "ProgressView": {
            "type": "object",
            "properties": {
                "overall": {"$ref": "#/definitions/Summary"},
                "categories": {"type": "array", "items": {"type": "object"}}
            }
        },
        "Theme": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "navy"},
                "background": {"type": "string"},
                "accent": {"type": "string", "example": "#182558"},
                "track": {"type": "string"},
                "fallback": {"type": "string"}
            }
        },
        "RenderRequest": {
            "type": "object",
            "properties": {
                "options": {
                    "type": "object",
                    "properties": {
                        "show_title": {"type": "boolean"},
                        "title": {"type": "string"},
                        "names": {"type": "string", "enum": ["none", "primary", "secondary"]},
                        "show_price": {"type": "boolean"}
                    }
                },
                "theme": {"type": "integer", "example": 0}
            }
        },
        "ExportImage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "file_name": {"type": "string"},
                "content_type": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "RenderResult": {
            "type": "object",
            "properties": {
                "generation": {"type": "integer"},
                "published": {"type": "boolean"},
                "missing_images": {"type": "array", "items": {"type": "string"}},
                "collection": {"$ref": "#/definitions/ExportImage"},
                "stats": {"$ref": "#/definitions/ExportImage"},
                "progress": {"$ref": "#/definitions/ProgressView"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "", // This will be set from environment
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Kenshi Collection API",
	Description:      "Tracks owned Kenshi catalog items and renders the collection collage and progress card.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
