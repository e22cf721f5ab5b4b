package conversation

import (
	"regexp"
	"strings"
)

var mention = regexp.MustCompile(`(?:^|[^\w@])@([\p{L}\p{N}_.-]+)`)

// ParseMentions returns the lower-cased nicknames mentioned with @ in the
// prompt, in order of first appearance.
func ParseMentions(prompt string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range mention.FindAllStringSubmatch(prompt, -1) {
		nick := strings.ToLower(strings.TrimRight(m[1], ".-"))
		if nick == "" || seen[nick] {
			continue
		}
		seen[nick] = true
		out = append(out, nick)
	}
	return out
}
