// Package docs holds the OpenAPI spec consumed by gin-swagger's UI at
// /swagger/*any. It is written by hand in the shape `swag init` produces;
// `swag init -g base.go -d ../handlers -o .` regenerates it from the
// handlers' swag annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness and host resource usage",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/universe": {
            "get": {
                "produces": ["application/json"],
                "tags": ["universe"],
                "summary": "Dump the answer index",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3030",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "cachewarden Management API",
	Description:      "Read-only inspection surface for the DNS cache refresh daemon.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
