package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/johnsonjew/learning-journal/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageList     = "list"
	pageDetails  = "details"
	pageNewPost  = "newpost"
	pageEdit     = "edit"
	pageLogin    = "login"
	pageNotFound = "notfound"
)

var pages = []string{pageList, pageDetails, pageNewPost, pageEdit, pageLogin, pageNotFound}

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
}

// formData echoes what the user submitted so a rejected form keeps its input.
type formData struct {
	Title    string
	Text     string
	UserName string
}

type pageData struct {
	Authenticated bool
	Entries       []*models.Entry
	Entry         *models.Entry
	Body          template.HTML
	Form          formData
	Error         string
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	set := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("error parsing template %s: %w", name, err)
		}
		set[name] = t
	}
	return set, nil
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// render executes page into a buffer first so a template failure never leaves
// a half-written response behind.
func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	data.Authenticated = isAuthenticated(r.Context())

	var buf bytes.Buffer
	if err := s.templates[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.internalError(w, r, fmt.Errorf("error executing template %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
