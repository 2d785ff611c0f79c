// Package codeblock finds fenced code blocks in generated replies and names
// them for saving.
package codeblock

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultLanguage is reported for fences without an info string.
const DefaultLanguage = "plaintext"

// contextSize bounds how much preceding prose is kept per block.
const contextSize = 200

// Block is one fenced code block.
type Block struct {
	Language string // Info string language, DefaultLanguage when absent.
	Code     string // Block content with surrounding whitespace trimmed.
	Context  string // Up to 200 bytes of text preceding the fence, trimmed.
}

var parser = goldmark.New().Parser()

// Extract returns the fenced code blocks of a markdown reply in document
// order.
func Extract(reply string) []Block {
	src := []byte(reply)
	doc := parser.Parse(text.NewReader(src))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := string(fb.Language(src))
		if lang == "" {
			lang = DefaultLanguage
		}

		var code bytes.Buffer
		lines := fb.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}

		blocks = append(blocks, Block{
			Language: lang,
			Code:     strings.TrimSpace(code.String()),
			Context:  precedingText(src, fenceStart(src, fb)),
		})

		return ast.WalkSkipChildren, nil
	})

	return blocks
}

// fenceStart returns the offset of the opening fence of fb, or -1.
func fenceStart(src []byte, fb *ast.FencedCodeBlock) int {
	pos := -1
	switch {
	case fb.Info != nil:
		pos = fb.Info.Segment.Start
	case fb.Lines().Len() > 0:
		pos = fb.Lines().At(0).Start
	}
	if pos < 0 {
		return -1
	}

	head := src[:pos]
	return max(bytes.LastIndex(head, []byte("```")), bytes.LastIndex(head, []byte("~~~")))
}

func precedingText(src []byte, end int) string {
	if end <= 0 {
		return ""
	}
	start := max(0, end-contextSize)
	return strings.TrimSpace(string(src[start:end]))
}
