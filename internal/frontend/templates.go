package frontend

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const viewsPattern = "views/*.html"

//go:embed views/*.html
var templateFS embed.FS

//go:embed views/icon.svg
var assetsFS embed.FS

type Template struct {
	templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func newTemplate(location *time.Location) *Template {
	return &Template{
		templates: template.Must(template.New("").Funcs(templateFuncs(location)).ParseFS(templateFS, viewsPattern)),
	}
}

func templateFuncs(location *time.Location) template.FuncMap {
	return template.FuncMap{
		"nl2br": nl2br,
		"formatDate": func(t time.Time) string {
			return t.In(location).Format("2006-01-02")
		},
		"formatDateTime": func(t time.Time) string {
			return t.In(location).Format("2006-01-02 15:04")
		},
		"formatMonth": func(t time.Time) string {
			return t.In(location).Format("2006-01")
		},
	}
}

// nl2br escapes text and turns newlines into <br> tags.
func nl2br(text string) template.HTML {
	if text == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
