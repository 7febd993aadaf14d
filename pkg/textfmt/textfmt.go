// Package textfmt turns model-generated markdown into HTML that is safe to
// embed in the page.
package textfmt

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Formatter renders markdown. Raw HTML in the input is dropped.
type Formatter struct {
	md goldmark.Markdown
}

func New() *Formatter {
	return &Formatter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// ToHTML renders text. On a rendering error it falls back to the escaped
// plain text.
func (f *Formatter) ToHTML(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := f.md.Convert([]byte(text), &buf); err != nil {
		return "<p>" + escape(text) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}

var replacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "\n", "<br>")

func escape(s string) string { return replacer.Replace(s) }
