// Package api holds the OpenAPI document served at /swagger.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
