package render

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Funcs returns the helpers every template can call. mediaURL resolves a
// stored image key; loc is the display time zone.
func Funcs(mediaURL func(string) string, loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"mediaURL": mediaURL,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("2 January 2006, 15:04")
		},
		"truncatewords": TruncateWords,
		"linebreaksbr":  LinebreaksBR,
		"pageURL":       PageURL,
	}
}

// TruncateWords keeps the first n words and appends an ellipsis when cut.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

// LinebreaksBR escapes s and turns newlines into <br>.
func LinebreaksBR(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// PageURL rewrites the page query parameter of the current request URL.
func PageURL(current *url.URL, page int) string {
	q := current.Query()
	q.Set("page", strconv.Itoa(page))
	return current.Path + "?" + q.Encode()
}
