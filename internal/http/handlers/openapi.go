package handlers

import (
	_ "embed"
	"fmt"
	"net/http"

	"idphoto/internal/middleware"
)

//go:embed openapi.json
var openAPISpec []byte

const (
	openAPIPath  = "/v1/openapi.json"
	redocVersion = "2.2.0"
)

var docsTitles = map[string]string{
	"vi": "Tài liệu API ảnh thẻ",
	"en": "ID Photo API Docs",
}

// docsPage renders the Redoc viewer for the embedded document. locale is one
// of the resolved locales, so it is safe to place in the markup unescaped.
func docsPage(locale string) string {
	title, ok := docsTitles[locale]
	if !ok {
		locale, title = "en", docsTitles["en"]
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
  <head>
    <meta charset="utf-8" />
    <title>%s</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; padding: 0; }
      redoc { display: block; height: 100vh; }
    </style>
  </head>
  <body>
    <redoc spec-url="%s" hide-download-button></redoc>
    <script src="https://cdn.jsdelivr.net/npm/redoc@%s/bundles/redoc.standalone.js"></script>
  </body>
</html>`, locale, title, openAPIPath, redocVersion)
}

// OpenAPIJSON serves the embedded OpenAPI document for the photo, batch and
// history endpoints.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

// OpenAPIDocs serves the browsable API reference in the request locale.
func (a *App) OpenAPIDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docsPage(middleware.LocaleFromContext(r.Context()))))
}
