// Package markup turns entry text written in Markdown into sanitized HTML.
//
// Fenced code blocks are highlighted by language. Indented code blocks are
// highlighted too; a first line of the form ":::lang" names the language,
// otherwise it is guessed. Highlighting is emitted as CSS classes, the
// stylesheet comes from Renderer.WriteCSS.
package markup

import (
	"bytes"
	"html/template"
	"io"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// DefaultStyle is the chroma style used when none is given.
const DefaultStyle = "friendly"

// Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	style  string
}

var classValue = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// NewRenderer builds a renderer that highlights code with the chroma style
// named style. Unknown names fall back to chroma's default style.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithGuessLanguage(true),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(indentedCodeTransformer{}, 100)),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classValue).OnElements("pre", "code", "span", "div")

	return &Renderer{md: md, policy: policy, style: style}
}

// Render converts source to HTML. Raw HTML in the source is dropped by the
// Markdown renderer and the output is sanitized again, so no script, event
// handler or javascript: URL survives. The same source always yields the
// same output.
func (r *Renderer) Render(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// WriteCSS writes the stylesheet matching the classes Render emits.
func (r *Renderer) WriteCSS(w io.Writer) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(r.style))
}
