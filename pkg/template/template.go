// Package template parses the prompt template format: a plain-text document
// with paired section tags and placeholder tokens. The parsed model is
// immutable; one instance serves a whole run.
//
// Document structure:
//
//	<template>
//	  <prompt>
//	    <header>...</header>
//	    <file>...</file>
//	    <footer>...</footer>
//	  </prompt>
//	  <part>              (optional; used only when output is split)
//	    <header>...</header>
//	    <footer>...</footer>
//	    <pending>...</pending>
//	  </part>
//	</template>
package template

// Placeholder tokens, substituted verbatim at render time. Anything else
// that looks like a tag is left as literal text.
const (
	TagFilePath       = "<file-path>"
	TagFileContent    = "<file-content>"
	TagAllFilePaths   = "<all-file-paths>"
	TagTree           = "<tree>"
	TagTotalFileSize  = "<total-file-size>"
	TagPartNumber     = "<part-number>"
	TagTotalParts     = "<total-parts>"
	TagPartsRemaining = "<parts-remaining>"
)

// Template is the parsed model of a template document.
type Template struct {
	Prompt PromptSection
	Part   PartSection
}

// PromptSection holds the header, per-file block, and footer of the prompt.
type PromptSection struct {
	Header string
	File   string
	Footer string
}

// PartSection holds the wrapper text applied to each part when the output
// is split: a header, a footer, and the "more to come" text appended to
// every part except the last.
type PartSection struct {
	Header  string
	Footer  string
	Pending string
}
