// Package qcodegen renders a closed toolkit's element-defs to generated
// Go struct/accessor code, and optionally to a JSON Schema document
// describing the same shapes for editor completion.
package qcodegen

import (
	"strings"
	"unicode"
)

// splitName splits a declared name on hyphens and underscores, the same
// two separators the toolkit declaration and document grammars allow in
// a name token.
func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
}

// commonAcronyms lists the abbreviations this generator fully uppercases
// rather than title-casing.
var commonAcronyms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uuid": "UUID",
	"api":  "API",
	"http": "HTTP",
	"xml":  "XML",
	"json": "JSON",
}

// ToPascalCase transforms a kebab-case or snake_case declared name into
// an exported Go identifier, uppercasing recognized acronyms in full.
func ToPascalCase(name string) string {
	parts := splitName(name)
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		if acronym, ok := commonAcronyms[lower]; ok {
			b.WriteString(acronym)
			continue
		}
		runes := []rune(lower)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}
