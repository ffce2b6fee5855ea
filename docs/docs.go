// Package docs serves the OpenAPI description of the HTTP API.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPI []byte

// DocPath is where Swagger UI loads the description from.
const DocPath = "/swagger/doc.json"

func OpenAPI() []byte {
	return openAPI
}

func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPI)
}
