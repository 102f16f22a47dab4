// Package templates embeds the HTML email bodies.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Booking parses booking_email.html.
func Booking() (*template.Template, error) {
	return template.ParseFS(files, "booking_email.html")
}
