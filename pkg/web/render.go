package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

//go:embed templates/*.html
var templateFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer(funcs template.FuncMap) (*renderer, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &renderer{templates: t}, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"statusColor": func(st model.Status) string { return colors.Status(st) },
		"ownerColor":  s.palette.Color,
		"next": func(st model.Status) string {
			if n, ok := st.Next(); ok {
				return string(n)
			}
			return ""
		},
		"prev": func(st model.Status) string {
			if p, ok := st.Prev(); ok {
				return string(p)
			}
			return ""
		},
	}
}
