package markup

import (
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// indentedCodeTransformer rewrites indented code blocks into fenced ones so
// the highlighter picks them up. A first line naming the language becomes the
// fence info string:
//
//	:::python          language line, removed from the body
//	#!python           language line, removed from the body
//	#!/usr/bin/python  shebang, kept in the body
type indentedCodeTransformer struct{}

// languageLine matches the whole first line; group 1 is the shebang marker,
// group 2 the interpreter path, group 3 the language.
var languageLine = regexp.MustCompile(`^[ \t]*(?:::+|(#!))((?:/\w+)*[/ ])?([\w#.+-]+)[ \t]*\r?\n?$`)

func (indentedCodeTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var blocks []*ast.CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if cb, ok := n.(*ast.CodeBlock); ok && entering {
			blocks = append(blocks, cb)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, cb := range blocks {
		lines := cb.Lines()
		var info *ast.Text
		first := 0
		if lines.Len() > 0 {
			if seg, keep, ok := languageSegment(source, lines.At(0)); ok {
				info = ast.NewTextSegment(seg)
				if !keep {
					first = 1
				}
			}
		}

		body := text.NewSegments()
		for i := first; i < lines.Len(); i++ {
			body.Append(lines.At(i))
		}

		fenced := ast.NewFencedCodeBlock(info)
		fenced.SetLines(body)
		cb.Parent().ReplaceChild(cb.Parent(), cb, fenced)
	}
}

// languageSegment returns the segment covering the language named by line and
// whether the line belongs to the code (a shebang with a path).
func languageSegment(source []byte, line text.Segment) (seg text.Segment, keep bool, ok bool) {
	m := languageLine.FindSubmatchIndex(source[line.Start:line.Stop])
	if m == nil {
		return text.Segment{}, false, false
	}
	shebang := m[2] >= 0
	hasPath := m[4] >= 0
	return text.NewSegment(line.Start+m[6], line.Start+m[7]), shebang && hasPath, true
}
