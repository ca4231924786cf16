package http

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
)

const pageTemplates = `
{{define "token"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Token</title></head>
<body>
<h1>Bearer token</h1>
<p>{{if .Present}}{{.Token}}{{else}}No Bearer token provided.{{end}}</p>
</body>
</html>{{end}}

{{define "list"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<ul>{{range .Items}}<li><a href="{{.Href}}">{{.Name}}</a></li>{{end}}</ul>
</body>
</html>{{end}}

{{define "entry"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
<pre>{{.Content}}</pre>
</body>
</html>{{end}}

{{define "message"}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<p>{{.Message}}</p>
</body>
</html>{{end}}

{{define "not_found"}}<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>kvfront</center>
</body>
</html>{{end}}
`

var pages = template.Must(template.New("pages").Parse(pageTemplates))

type tokenPage struct {
	Token   string
	Present bool
}

type listItem struct {
	Name string
	Href string
}

type listPage struct {
	Title string
	Items []listItem
}

type entryPage struct {
	Name    string
	Content string
}

type messagePage struct {
	Title   string
	Message string
}

func newListPage(title, prefix string, names []string) listPage {
	items := make([]listItem, len(names))
	for i, name := range names {
		items[i] = listItem{Name: name, Href: prefix + "/" + url.PathEscape(name)}
	}
	return listPage{Title: title, Items: items}
}

// renderPage executes a named template into a buffer first so a template
// failure can still produce a clean 500.
func renderPage(w http.ResponseWriter, code int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteHTML(w, code, buf.Bytes())
}

func writeNotFound(w http.ResponseWriter) {
	renderPage(w, http.StatusNotFound, "not_found", nil)
}
