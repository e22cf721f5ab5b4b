package export

import (
	"regexp"
	"strings"
)

// DefaultBaseName is used when a document has no usable name.
const DefaultBaseName = "documento"

var (
	extension = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)
	unsafe    = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)
)

// Filename derives a download name from a document name. An existing
// extension is replaced rather than appended.
func Filename(name string, format Format) string {
	base := strings.TrimSpace(unsafe.ReplaceAllString(name, "_"))
	base = strings.TrimSpace(extension.ReplaceAllString(base, ""))
	base = strings.Trim(base, ".")
	if base == "" {
		base = DefaultBaseName
	}
	return base + "." + string(format)
}
