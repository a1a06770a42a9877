package catalog

import (
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// htmlTagPattern matches common HTML tags to detect if a string contains markup.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|u|strong|em|a|ul|ol|li|img|h[1-6]|blockquote)[\s>/]`)

var whitespacePattern = regexp.MustCompile(`\s+`)

func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// cleanDescription unescapes HTML entities in a store blurb. Blurbs that carry
// markup are reduced to their text content.
func cleanDescription(s string) string {
	if s == "" {
		return ""
	}
	if !containsHTML(s) {
		return html.UnescapeString(s)
	}

	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return html.UnescapeString(s)
	}

	var buf strings.Builder
	extractText(doc, &buf)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(buf.String(), " "))
}

// extractText walks the tree collecting text, padding block elements with spaces.
func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}

	block := n.Type == html.ElementNode && isBlock(n.Data)
	if block {
		buf.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}
	if block {
		buf.WriteString(" ")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// descriptionMarkdown renders Steam's detailed description as Markdown.
// Plain text comes back unchanged; conversion failures yield "".
func descriptionMarkdown(s string) string {
	if s == "" {
		return ""
	}
	if !containsHTML(s) {
		return s
	}

	markdown, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}

// foldText lowercases and strips diacritics so "Pokémon" matches "pokemon".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
