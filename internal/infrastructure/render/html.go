package render

import (
	"fmt"
	"html/template"
	"io"

	"Pokedex/internal/view"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"display": displayName,
	"percent": StatPercent,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Pokedex</title>
</head>
<body>
<main class="pokedex"{{if .SearchTerm}} data-search="{{.SearchTerm}}"{{end}}>
{{- if .Loading}}
<p class="loading">Loading...</p>
{{- else}}
<ul class="cards">
{{- range .Cards}}
<li class="card" data-id="{{.ID}}">
<img src="{{.Image}}" alt="{{.Name}}" loading="lazy">
<span class="number">{{.Number}}</span>
<h2 class="name">{{display .Name}}</h2>
{{- range .Types}}
<span class="type">{{.}}</span>
{{- end}}
{{- range .Stats}}
<div class="stat" data-stat="{{.Name}}"><span class="label">{{display .Name}}</span><span class="value">{{.Value}}</span><span class="bar" style="width: {{percent .Value}}%"></span></div>
{{- end}}
</li>
{{- end}}
</ul>
<nav class="pager"><span class="current">{{.Number}}</span> / <span class="total">{{.TotalPages}}</span></nav>
{{- end}}
</main>
</body>
</html>
`))

type card struct {
	ID     string
	Name   string
	Number string
	Image  string
	Types  []string
	Stats  []stat
}

type stat struct {
	Name  string
	Value int
}

type htmlPage struct {
	Cards      []card
	Number     int
	TotalPages int
	SearchTerm string
	Loading    bool
}

// HTML writes the page as a static document of cards.
func HTML(w io.Writer, page view.Page) error {
	data := htmlPage{
		Number:     page.Number,
		TotalPages: page.TotalPages,
		SearchTerm: page.SearchTerm,
		Loading:    page.Loading,
	}
	for _, p := range page.Entries {
		c := card{ID: p.ID, Name: p.Name, Number: p.Number(), Image: artwork(p)}
		if d, ok := p.Detail(); ok {
			c.Types = d.Types
			for _, s := range d.Stats {
				c.Stats = append(c.Stats, stat{Name: s.Name, Value: s.Value})
			}
		}
		data.Cards = append(data.Cards, c)
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
