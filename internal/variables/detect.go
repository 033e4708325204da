// Package variables extracts and fills {placeholder} tokens in prompt text.
package variables

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([^}]*)\}`)

// Detect returns the placeholder names in text, in order of appearance.
// Names are trimmed of surrounding whitespace and duplicates are kept.
// "{}" yields an empty name; an unclosed "{" yields nothing.
func Detect(text string) []string {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSpace(m[1]))
	}
	return names
}

// Substitute replaces the first literal "{name}" in text with value.
// A placeholder written with inner whitespace, such as "{ name }", does not
// match its trimmed name.
func Substitute(text, name, value string) string {
	return strings.Replace(text, "{"+name+"}", value, 1)
}

// Render fills text with values by calling Substitute once for every detected
// placeholder. Names missing from values are left in place.
func Render(text string, values map[string]string) string {
	for _, name := range Detect(text) {
		v, ok := values[name]
		if !ok {
			continue
		}
		text = Substitute(text, name, v)
	}
	return text
}
