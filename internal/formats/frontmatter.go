package formats

import (
	"strings"
)

// splitFrontmatter separates a YAML front-matter block from the markdown
// body. Returns the raw front-matter text (without delimiters), the body,
// and whether front matter was present.
func splitFrontmatter(content string) (fm string, body string, ok bool) {
	rest, found := strings.CutPrefix(content, "---\n")
	if !found {
		return "", content, false
	}
	if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
		// The blank line renderFrontmatter writes after the closing
		// delimiter is framing, not body content.
		body = strings.TrimPrefix(rest[idx+5:], "\n")
		return rest[:idx], body, true
	}
	// Trailing delimiter at end of file, no body.
	if idx := strings.Index(rest, "\n---"); idx >= 0 && idx+4 == len(rest) {
		return rest[:idx], "", true
	}
	return "", content, false
}

// renderFrontmatter wraps serialized front matter and a body into the
// canonical on-disk shape used by front-matter dialects.
func renderFrontmatter(fm string, body string) string {
	return "---\n" + strings.TrimRight(fm, "\n") + "\n---\n\n" + strings.TrimRight(body, "\n") + "\n"
}
