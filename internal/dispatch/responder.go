package dispatch

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/valislegal/valis/internal/domain/conversation"
)

// DefaultArtifactTitle names an artifact whose prompt holds nothing but mentions.
const DefaultArtifactTitle = "Bozza"

const titleLimit = 60

var mentionToken = regexp.MustCompile(`(^|\s)@\S+`)

// Responder writes the agents' side of a conversation.
type Responder interface {
	// Reply returns the text of one agent's answer to the prompt.
	Reply(ctx context.Context, prompt string, agent conversation.Agent) (string, error)
	// Artifact returns the HTML content of the document produced for the prompt.
	Artifact(ctx context.Context, title, prompt string, agents []conversation.Agent) (string, error)
}

// SyntheticResponder answers with fixed Italian placeholder text.
type SyntheticResponder struct{}

func (SyntheticResponder) Reply(_ context.Context, prompt string, agent conversation.Agent) (string, error) {
	return fmt.Sprintf("%s: ho preso in carico la richiesta %q. Trovi una prima bozza nel documento generato.",
		agent.Name, excerpt(prompt, titleLimit)), nil
}

func (SyntheticResponder) Artifact(_ context.Context, title, prompt string, agents []conversation.Agent) (string, error) {
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = html.EscapeString(a.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(title))
	fmt.Fprintf(&b, "<p><em>Bozza preparata da %s.</em></p>", strings.Join(names, ", "))
	fmt.Fprintf(&b, "<h2>Richiesta</h2><p>%s</p>", html.EscapeString(strings.TrimSpace(prompt)))
	b.WriteString("<h2>Svolgimento</h2><p>Contenuto in preparazione.</p>")
	return b.String(), nil
}

// ArtifactTitle derives a document name from the prompt: mentions are
// dropped, whitespace collapsed and the text cut at a word boundary.
func ArtifactTitle(prompt string) string {
	text := mentionToken.ReplaceAllString(prompt, "$1")
	title := excerpt(text, titleLimit)
	if title == "" {
		return DefaultArtifactTitle
	}
	return DefaultArtifactTitle + " - " + title
}

func excerpt(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
