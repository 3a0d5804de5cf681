// Package markdown renders article content to sanitised HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// DescriptionLength is the rune limit of derived descriptions
const DescriptionLength = 200

const ellipsis = "..."

// Renderer converts markdown to HTML safe for embedding
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// NewRenderer creates a GFM renderer backed by the UGC sanitising policy
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	strict := bluemonday.StrictPolicy()
	strict.AddSpaceWhenStrippingTag(true)

	return &Renderer{md: md, policy: policy, strict: strict}
}

// Render returns sanitised HTML for source
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Describe derives a plain-text description from rendered HTML
func (r *Renderer) Describe(renderedHTML string) string {
	text := html.UnescapeString(r.strict.Sanitize(renderedHTML))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= DescriptionLength {
		return text
	}
	return Truncate(text, DescriptionLength-len(ellipsis)) + ellipsis
}

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
