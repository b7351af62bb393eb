// Package docs registers the API description served under /swagger.
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
        "/auth/register": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Register user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Login",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Refresh session",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/auth/me": {
            "get": {
                "tags": [
                    "auth"
                ],
                "summary": "Get current user",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/auth/logout": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Logout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/collections/{collection}/records": {
            "get": {
                "tags": [
                    "collections"
                ],
                "summary": "List records",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "collection",
                        "in": "path",
                        "required": true,
                        "description": "feeds, categories, subscriptions or feed_items"
                    },
                    {
                        "type": "string",
                        "name": "filter",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "string",
                        "name": "sort",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "integer",
                        "name": "page",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "integer",
                        "name": "perPage",
                        "in": "query",
                        "description": ""
                    }
                ]
            },
            "post": {
                "tags": [
                    "collections"
                ],
                "summary": "Create record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "collection",
                        "in": "path",
                        "required": true,
                        "description": "feeds, categories, subscriptions or feed_items"
                    }
                ]
            }
        },
        "/collections/{collection}/records/{id}": {
            "get": {
                "tags": [
                    "collections"
                ],
                "summary": "Get record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "collection",
                        "in": "path",
                        "required": true,
                        "description": "feeds, categories, subscriptions or feed_items"
                    },
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            },
            "patch": {
                "tags": [
                    "collections"
                ],
                "summary": "Update record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "collection",
                        "in": "path",
                        "required": true,
                        "description": "feeds, categories, subscriptions or feed_items"
                    },
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            },
            "delete": {
                "tags": [
                    "collections"
                ],
                "summary": "Delete record",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "collection",
                        "in": "path",
                        "required": true,
                        "description": "feeds, categories, subscriptions or feed_items"
                    },
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/feeds": {
            "get": {
                "tags": [
                    "feeds"
                ],
                "summary": "List feeds",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "category",
                        "in": "query",
                        "description": ""
                    }
                ]
            },
            "post": {
                "tags": [
                    "feeds"
                ],
                "summary": "Add a feed",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/feeds/refresh": {
            "post": {
                "tags": [
                    "feeds"
                ],
                "summary": "Refresh feeds",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/feeds/{id}": {
            "get": {
                "tags": [
                    "feeds"
                ],
                "summary": "Get a feed",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            },
            "patch": {
                "tags": [
                    "feeds"
                ],
                "summary": "Update a subscription",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            },
            "delete": {
                "tags": [
                    "feeds"
                ],
                "summary": "Delete a feed",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/feeds/{id}/refresh": {
            "post": {
                "tags": [
                    "feeds"
                ],
                "summary": "Refresh a feed",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/items": {
            "get": {
                "tags": [
                    "items"
                ],
                "summary": "List items",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "feedId",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "string",
                        "name": "category",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "boolean",
                        "name": "unreadOnly",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "boolean",
                        "name": "starredOnly",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "string",
                        "name": "q",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "string",
                        "name": "sort",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "integer",
                        "name": "limit",
                        "in": "query",
                        "description": ""
                    },
                    {
                        "type": "integer",
                        "name": "offset",
                        "in": "query",
                        "description": ""
                    }
                ]
            }
        },
        "/items/mark-read": {
            "post": {
                "tags": [
                    "items"
                ],
                "summary": "Mark all as read",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/items/{id}": {
            "get": {
                "tags": [
                    "items"
                ],
                "summary": "Get item",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/items/{id}/read": {
            "patch": {
                "tags": [
                    "items"
                ],
                "summary": "Update read status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/items/{id}/star": {
            "patch": {
                "tags": [
                    "items"
                ],
                "summary": "Update starred status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/items/{id}/fetch-readable": {
            "post": {
                "tags": [
                    "items"
                ],
                "summary": "Fetch readable content",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": ""
                    }
                ]
            }
        },
        "/unread-counts": {
            "get": {
                "tags": [
                    "items"
                ],
                "summary": "Get unread counts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/opml/import": {
            "post": {
                "tags": [
                    "opml"
                ],
                "summary": "Import OPML",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "boolean",
                        "name": "wait",
                        "in": "query",
                        "description": ""
                    }
                ]
            },
            "delete": {
                "tags": [
                    "opml"
                ],
                "summary": "Cancel OPML import",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/opml/import/status": {
            "get": {
                "tags": [
                    "opml"
                ],
                "summary": "OPML import status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/opml/export": {
            "get": {
                "tags": [
                    "opml"
                ],
                "summary": "Export OPML",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/preferences": {
            "get": {
                "tags": [
                    "preferences"
                ],
                "summary": "Get preferences",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "preferences"
                ],
                "summary": "Update preferences",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/system-info": {
            "get": {
                "tags": [
                    "system"
                ],
                "summary": "System info",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "readr API",
	Description:      "Multi-user feed reader API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
