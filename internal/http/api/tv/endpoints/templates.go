package endpoints

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"clock": func(t time.Time) string { return t.Format("15:04") },
	"day":   func(t time.Time) string { return t.Format("02/01") },
	"image": imageURL,
}

// imageURL lets image data URLs through html/template's URL filter, which
// otherwise rejects the data: scheme.
func imageURL(src string) template.URL {
	for _, prefix := range []string{"data:image/", "https://", "http://", "/uploads/"} {
		if strings.HasPrefix(src, prefix) {
			return template.URL(src)
		}
	}
	return ""
}

// Templates parses the embedded player templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}
