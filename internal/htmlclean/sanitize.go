// Package htmlclean normalizes document content into an HTML fragment that the
// editor and the exporter can consume: it unwraps full documents, turns plain
// text into paragraphs and strips Word-specific markup.
package htmlclean

import (
	"html"
	"regexp"
	"strings"
)

// EmptyParagraph is returned for content with nothing to show.
const EmptyParagraph = "<p><br></p>"

var (
	documentMarker = regexp.MustCompile(`(?i)<(html|body)[\s>]`)
	bodyContent    = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body\s*>`)
	bodyOpen       = regexp.MustCompile(`(?is)<body[^>]*>`)
	anyTag         = regexp.MustCompile(`<[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)
	blankLines     = regexp.MustCompile(`\n[ \t]*\n+`)
)

// substitution is one step of the post-processing pass.
type substitution struct {
	pattern *regexp.Regexp
	replace string
}

// cleanups run in order over every sanitized fragment.
var cleanups = []substitution{
	{regexp.MustCompile(`(?i)page-break-(before|after|inside)\s*:\s*[a-z-]+\s*;?\s*`), ""},
	{regexp.MustCompile(`(?i)mso-break-type\s*:\s*[a-z-]+\s*;?\s*`), ""},
	{regexp.MustCompile(`(?i)\s+style\s*=\s*("\s*"|'\s*')`), ""},
	{regexp.MustCompile(`(?is)<!--\[if[^\]]*\]>.*?<!\[endif\]-->`), ""},
	{regexp.MustCompile(`(?is)<!\[if[^\]]*\]>.*?<!\[endif\]>`), ""},
	{regexp.MustCompile(`(?s)<!--.*?-->`), ""},
}

// Sanitize converts raw content into a sanitized HTML fragment. It never fails:
// malformed markup is passed through best-effort and blank content yields
// EmptyParagraph.
func Sanitize(content string) string {
	if strings.TrimSpace(content) == "" {
		return EmptyParagraph
	}

	var fragment string
	switch {
	case IsFullDocument(content):
		fragment = ExtractBody(content)
	case IsHTML(content):
		fragment = content
	default:
		fragment = TextToHTML(content)
	}

	for _, c := range cleanups {
		fragment = c.pattern.ReplaceAllString(fragment, c.replace)
	}

	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return EmptyParagraph
	}
	return fragment
}

// IsFullDocument reports whether content carries an <html> or <body> wrapper.
func IsFullDocument(content string) bool {
	return documentMarker.MatchString(content)
}

// IsHTML reports whether content contains at least one element tag.
func IsHTML(content string) bool {
	return anyTag.MatchString(content)
}

// ExtractBody returns the inner content of the <body> element. A body without
// a closing tag yields everything after the opening tag; no body at all yields
// the input unchanged.
func ExtractBody(content string) string {
	if m := bodyContent.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	if loc := bodyOpen.FindStringIndex(content); loc != nil {
		return content[loc[1]:]
	}
	return content
}

// TextToHTML wraps blank-line separated paragraphs in <p> and turns the
// remaining newlines into <br>.
func TextToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := blankLines.Split(strings.TrimSpace(text), -1)

	var sb strings.Builder
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lines := strings.Split(part, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimRight(line, " \t"))
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}
