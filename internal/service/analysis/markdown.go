package analysis

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	citationMarkerRe = regexp.MustCompile(`\[\d+\]`)
)

// ToHTML renders model Markdown. Inline HTML from the model is passed through.
func ToHTML(markdown string) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return strings.ReplaceAll(markdown, "\n", "<br>")
	}
	return strings.TrimSpace(buf.String())
}

// StripCitationMarkers removes Perplexity's [1] style references.
func StripCitationMarkers(s string) string {
	return citationMarkerRe.ReplaceAllString(s, "")
}
