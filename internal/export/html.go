package export

import (
	"fmt"
	"html/template"
	"io"
)

var standalone = template.Must(template.New("standalone").Parse(`<!DOCTYPE html>
<html lang="it">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 2.54cm; }
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; line-height: 1.4; max-width: 21cm; margin: 0 auto; padding: 2.54cm; }
h1 { font-size: 16pt; }
h2 { font-size: 14pt; }
h3 { font-size: 12pt; }
p { text-align: justify; margin: 0 0 8pt; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTMLEncoder writes a standalone styled HTML page.
type HTMLEncoder struct{}

// Encode renders paragraphs as a standalone page.
func (HTMLEncoder) Encode(w io.Writer, title string, paragraphs []Paragraph) error {
	return renderPage(w, title, paragraphsHTML(paragraphs))
}

func renderPage(w io.Writer, title string, body template.HTML) error {
	if err := standalone.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, body}); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	return nil
}

func paragraphsHTML(paragraphs []Paragraph) template.HTML {
	var out string
	openList := ListNone
	openID := 0
	closeList := func() {
		switch openList {
		case ListBullet:
			out += "</ul>\n"
		case ListDecimal:
			out += "</ol>\n"
		}
		openList = ListNone
	}
	for _, p := range paragraphs {
		if p.List != openList || p.ListID != openID {
			closeList()
			switch p.List {
			case ListBullet:
				out += "<ul>\n"
			case ListDecimal:
				out += "<ol>\n"
			}
			openList, openID = p.List, p.ListID
		}
		body := runsHTML(p.Runs)
		switch {
		case p.List != ListNone:
			out += "<li>" + body + "</li>\n"
		case p.Style == StyleHeading1:
			out += "<h1>" + body + "</h1>\n"
		case p.Style == StyleHeading2:
			out += "<h2>" + body + "</h2>\n"
		case p.Style == StyleHeading3:
			out += "<h3>" + body + "</h3>\n"
		case p.Align == AlignJustify:
			out += "<p>" + body + "</p>\n"
		default:
			out += `<p style="text-align:left">` + body + "</p>\n"
		}
	}
	closeList()
	return template.HTML(out)
}

func runsHTML(runs []Run) string {
	var out string
	for _, r := range runs {
		if r.Break {
			out += "<br>"
			continue
		}
		text := template.HTMLEscapeString(r.Text)
		if r.Underline {
			text = "<u>" + text + "</u>"
		}
		if r.Italic {
			text = "<em>" + text + "</em>"
		}
		if r.Bold {
			text = "<strong>" + text + "</strong>"
		}
		out += text
	}
	return out
}
