package main

import (
	"html/template"

	tvapi "github.com/Nixie-Tech-LLC/lineup/internal/http/api/tv/endpoints"
)

// LoadTemplates returns the HTML templates for the player page
func LoadTemplates() *template.Template {
	return tvapi.Templates()
}
