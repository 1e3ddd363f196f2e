// Package parser extracts [[wikilink]] references and plain text from note
// content. Content is editor HTML, so markup is stripped before comparison.
package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	blockRe    = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|blockquote|pre|br)\b[^>]*>`)

	// StrictPolicy is safe for concurrent use once built.
	strict = bluemonday.StrictPolicy()
)

// References returns the distinct [[...]] spans in content, normalised for
// title matching: markup stripped, entities decoded, trimmed and lower-cased.
// Empty spans are dropped. Order follows first occurrence.
func References(content string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		ref := Normalize(stripMarkup(m[1]))
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// Normalize folds a title or reference span into its comparison form.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PlainText strips markup from content and collapses whitespace.
func PlainText(content string) string {
	if content == "" {
		return ""
	}
	// Block tags separate words; inline tags do not.
	text := stripMarkup(blockRe.ReplaceAllString(content, " "))
	return strings.Join(strings.Fields(text), " ")
}

func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return html.UnescapeString(strict.Sanitize(s))
}
