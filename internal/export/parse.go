package export

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/valislegal/valis/internal/htmlclean"
)

// EmptyDocumentText is the text of the only paragraph of an empty document.
const EmptyDocumentText = "Documento vuoto"

// builder turns one top-level element into zero or more paragraphs.
type builder func(n *html.Node, lists *int) []Paragraph

// builders maps every kind to its paragraph-construction strategy.
var builders = map[Kind]builder{
	KindHeading1:    heading(KindHeading1, StyleHeading1),
	KindHeading2:    heading(KindHeading2, StyleHeading2),
	KindHeading3:    heading(KindHeading3, StyleHeading3),
	KindParagraph:   justified,
	KindBulletList:  list(KindBulletList, ListBullet),
	KindOrderedList: list(KindOrderedList, ListDecimal),
	KindFallback:    fallback,
}

// Parse sanitizes raw content and maps it to paragraphs.
func Parse(content string) []Paragraph {
	return Paragraphs(htmlclean.Sanitize(content))
}

// Paragraphs maps the direct child elements of an already sanitized fragment
// to paragraphs. When the fragment has elements, the result starts with one
// empty spacer paragraph. A fragment without elements, or whose elements are
// all empty, yields a single paragraph with its trimmed text or
// EmptyDocumentText.
func Paragraphs(fragment string) []Paragraph {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), htmlclean.BodyContext())
	if err != nil {
		return []Paragraph{single(strings.TrimSpace(fragment))}
	}

	var elements []*html.Node
	var text strings.Builder
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elements = append(elements, n)
		}
		text.WriteString(textContent(n))
	}

	out := []Paragraph{{Kind: KindFallback, Style: StyleNormal, Align: AlignLeft}}
	lists := 0
	for _, el := range elements {
		build := builders[KindOf(el.Data)]
		for _, p := range build(el, &lists) {
			if !p.IsEmpty() {
				out = append(out, p)
			}
		}
	}
	if len(out) > 1 {
		return out
	}

	return []Paragraph{single(strings.Join(strings.Fields(text.String()), " "))}
}

func heading(kind Kind, style Style) builder {
	return func(n *html.Node, _ *int) []Paragraph {
		return []Paragraph{{Kind: kind, Style: style, Align: AlignLeft, Runs: inlineRuns(n)}}
	}
}

func justified(n *html.Node, _ *int) []Paragraph {
	return []Paragraph{{Kind: KindParagraph, Style: StyleNormal, Align: AlignJustify, Runs: inlineRuns(n)}}
}

func list(kind Kind, lk ListKind) builder {
	return func(n *html.Node, lists *int) []Paragraph {
		*lists++
		var out []Paragraph
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != "li" {
				continue
			}
			out = append(out, Paragraph{
				Kind:   kind,
				Style:  StyleNormal,
				Align:  AlignLeft,
				List:   lk,
				ListID: *lists,
				Runs:   inlineRuns(c),
			})
		}
		return out
	}
}

func fallback(n *html.Node, _ *int) []Paragraph {
	text := strings.Join(strings.Fields(textContent(n)), " ")
	if text == "" {
		return nil
	}
	return []Paragraph{{Kind: KindFallback, Style: StyleNormal, Align: AlignLeft, Runs: []Run{{Text: text}}}}
}

func single(text string) Paragraph {
	if text == "" {
		text = EmptyDocumentText
	}
	return Paragraph{Kind: KindFallback, Style: StyleNormal, Align: AlignLeft, Runs: []Run{{Text: text}}}
}

type format struct {
	bold, italic, underline bool
}

// inlineRuns flattens an element's content into formatted runs. Whitespace is
// collapsed and trimmed at the paragraph edges.
func inlineRuns(n *html.Node) []Run {
	var runs []Run
	var walk func(*html.Node, format)
	walk = func(n *html.Node, f format) {
		switch n.Type {
		case html.TextNode:
			text := collapseSpace(n.Data)
			if text == "" {
				return
			}
			if last := len(runs) - 1; last >= 0 && !runs[last].Break &&
				runs[last].Bold == f.bold && runs[last].Italic == f.italic && runs[last].Underline == f.underline {
				runs[last].Text += text
				return
			}
			runs = append(runs, Run{Text: text, Bold: f.bold, Italic: f.italic, Underline: f.underline})
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				runs = append(runs, Run{Break: true})
				return
			case "script", "style":
				return
			case "b", "strong":
				f.bold = true
			case "i", "em":
				f.italic = true
			case "u":
				f.underline = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, f)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, format{})
	}
	return trimRuns(runs)
}

func trimRuns(runs []Run) []Run {
	for len(runs) > 0 && (runs[0].Break || strings.TrimSpace(runs[0].Text) == "") {
		runs = runs[1:]
	}
	for len(runs) > 0 && (runs[len(runs)-1].Break || strings.TrimSpace(runs[len(runs)-1].Text) == "") {
		runs = runs[:len(runs)-1]
	}
	if len(runs) == 0 {
		return nil
	}
	runs[0].Text = strings.TrimLeft(runs[0].Text, " ")
	runs[len(runs)-1].Text = strings.TrimRight(runs[len(runs)-1].Text, " ")
	return runs
}

// collapseSpace folds whitespace runs into single spaces, keeping one space at
// either edge when the input had whitespace there.
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r' || b == '\f'
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			continue
		}
		sb.WriteString(textContent(c))
		if c.Type == html.ElementNode && c.Data == "br" {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
