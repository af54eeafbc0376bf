package web

import (
	"bytes"
	"embed"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var pageTemplateFS embed.FS

var (
	pageTemplates *template.Template
	pageOnce      sync.Once
	pageErr       error
)

func renderPage(view pageView) ([]byte, error) {
	pageOnce.Do(func() {
		pageTemplates, pageErr = template.New("page").ParseFS(pageTemplateFS, "templates/*.html")
	})

	if pageErr != nil {
		return nil, pageErr
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "layout", view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
