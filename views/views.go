// Package views holds the embedded HTML templates for the arena's three screens.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"math"

	"debatearena/locale"
	"debatearena/models"
)

//go:embed templates/*.html
var files embed.FS

// PageTemplate is the name passed to gin's c.HTML.
const PageTemplate = "page.html"

const ringRadius = 54

// Page is the data a template renders.
type Page struct {
	T       locale.Strings
	Session models.Session
	Topic   string
	Langs   []locale.Lang
}

func NewPage(s models.Session) Page {
	return Page{
		T:       locale.For(locale.Lang(s.Lang)),
		Session: s,
		Topic:   s.ResolvedTopic(),
		Langs:   []locale.Lang{locale.Turkish, locale.English},
	}
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

var funcs = template.FuncMap{
	"isUser": func(a models.Author) bool { return a == models.AuthorUser },
	"ringLength": func() string {
		return fmt.Sprintf("%.2f", 2*math.Pi*ringRadius)
	},
	// ringOffset is the stroke offset that fills the score ring to score/10.
	"ringOffset": func(score int) string {
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		return fmt.Sprintf("%.2f", 2*math.Pi*ringRadius*(1-float64(score)/10))
	},
}
