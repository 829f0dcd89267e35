package ui

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"

	"github.com/jw6ventures/carrental-console/internal/console"
)

//go:embed templates/*
var templateFS embed.FS

var templates = mustParseTemplates()

var funcMap = template.FuncMap{
	"join": strings.Join,
	"noticeClass": func(kind console.NoticeKind) string {
		switch kind {
		case console.NoticePositive:
			return "notice notice-positive"
		case console.NoticeNegative:
			return "notice notice-negative"
		case console.NoticeWarning:
			return "notice notice-warning"
		}
		return "notice notice-info"
	},
}

func mustParseTemplates() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	base := template.Must(template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html"))

	sets := make(map[string]*template.Template)
	for _, file := range files {
		if file == "templates/base.html" {
			continue
		}

		set := template.Must(base.Clone())
		template.Must(set.ParseFS(templateFS, file))
		sets[file[len("templates/"):]] = set
	}

	return sets
}
