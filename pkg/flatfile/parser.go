package flatfile

import (
	"strings"
	"unicode"

	"github.com/foomo/flatfileserver/content"
)

// SectionDelimiter a line holding only this token separates two sections
const SectionDelimiter = "----"

// ParseContent reads a content file body. Every section holds "Key: value"
// lines. A line that is not a key line, or an indented line once a field has
// started, continues the value of the preceding field of the same section.
// Lines in front of the first field of a section are skipped.
func ParseContent(data []byte) *content.Content {
	c := content.NewContent()
	for _, section := range Sections(string(data)) {
		parseSection(c, section)
	}
	return c
}

// Sections splits a body on delimiter lines
func Sections(text string) [][]string {
	text = strings.TrimPrefix(text, "\ufeff")
	var (
		sections [][]string
		current  []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == SectionDelimiter {
			sections = append(sections, current)
			current = nil
			continue
		}
		current = append(current, line)
	}
	return append(sections, current)
}

func parseSection(c *content.Content, lines []string) {
	var (
		name  string
		value []string
	)
	flush := func() {
		if name != "" {
			c.Set(name, strings.TrimSpace(strings.Join(value, "\n")))
		}
	}
	for _, line := range lines {
		if key, v, ok := splitField(line); ok && (name == "" || !indented(line)) {
			flush()
			name, value = key, []string{v}
			continue
		}
		if name != "" {
			value = append(value, line)
		}
	}
	flush()
}

// splitField "Key: value" → "Key", "value"
func splitField(line string) (string, string, bool) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	// "https://..." inside a text value
	if key == "" || strings.HasPrefix(value, "//") {
		return "", "", false
	}
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return "", "", false
		}
	}
	return key, strings.TrimSpace(value), true
}

func indented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}
