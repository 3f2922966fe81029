// Package render combines a selection with a template model into the unsplit
// document: one rendered block per file plus a header and footer carrying
// the aggregate placeholders. Rendering is pure; identical inputs always
// produce byte-identical output.
package render

import (
	"strings"

	"promptpack/pkg/selector"
	"promptpack/pkg/template"
)

// FileBlock is the rendered text for a single selected file. Blocks are the
// atomic unit of part splitting: a block is never divided between parts.
type FileBlock struct {
	Path string
	Text string
}

// Document is the rendered, unsplit output.
type Document struct {
	Header string
	Blocks []FileBlock
	Footer string
}

// Render produces the document for a selection. Header and footer aggregate
// placeholders are computed over the full selection, regardless of any
// splitting applied afterwards.
func Render(tpl *template.Template, sel *selector.Selection) *Document {
	doc := &Document{
		Header: renderAggregates(tpl.Prompt.Header, sel),
		Footer: renderAggregates(tpl.Prompt.Footer, sel),
	}

	for _, f := range sel.Files {
		text := strings.ReplaceAll(tpl.Prompt.File, template.TagFilePath, f.Path)
		text = strings.ReplaceAll(text, template.TagFileContent, f.Content)
		doc.Blocks = append(doc.Blocks, FileBlock{Path: f.Path, Text: text})
	}

	return doc
}

// Text assembles the single-document form: header, file blocks, and footer
// separated by newlines. Used when no splitting is needed.
func (d *Document) Text() string {
	var b strings.Builder

	if d.Header != "" {
		b.WriteString(d.Header)
		b.WriteString("\n")
	}
	for _, block := range d.Blocks {
		b.WriteString(block.Text)
		b.WriteString("\n")
	}
	b.WriteString(d.Footer)

	return b.String()
}

// renderAggregates substitutes the selection-wide placeholders. Tags are
// only expanded when present, so a template without a tree placeholder
// never pays for tree construction. Unknown placeholder-like text is left
// alone.
func renderAggregates(text string, sel *selector.Selection) string {
	if strings.Contains(text, template.TagAllFilePaths) {
		text = strings.ReplaceAll(text, template.TagAllFilePaths, sel.PathList())
	}
	if strings.Contains(text, template.TagTree) {
		text = strings.ReplaceAll(text, template.TagTree, sel.Tree())
	}
	if strings.Contains(text, template.TagTotalFileSize) {
		text = strings.ReplaceAll(text, template.TagTotalFileSize, sel.HumanTotalSize())
	}
	return text
}
