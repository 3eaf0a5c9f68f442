// Package api embeds the OpenAPI document served at /openapi.json.
package api

import _ "embed"

// OpenAPISpec is the OpenAPI 3 document in YAML.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
