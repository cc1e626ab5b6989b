package wizard

import (
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{
			"join": strings.Join,
			"stage": func(n int) Stage { return Stage(n) },
		}).
		ParseFS(templateFS, "templates/page.html"),
)

// Render writes the page as HTML.
func Render(w io.Writer, p *Page) error {
	return pageTemplate.Execute(w, p)
}
