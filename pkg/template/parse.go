package template

import (
	"fmt"
	"strings"
)

// Parse builds the template model from source text. Line endings are
// normalized first. The mandatory structure is one <template> containing one
// <prompt> with <header>, <file>, and <footer>; a <part> container is
// optional and falls back to the built-in part wrapper when absent. Missing
// or unmatched mandatory tags are fatal errors naming the tag and the line
// where matching failed.
func Parse(text string) (*Template, error) {
	return parse(text, false)
}

// parse implements Parse; partRequired is set when parsing the embedded
// default, which must carry its own part wrapper.
func parse(text string, partRequired bool) (*Template, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	templateContent, err := textInsideTag(text, "template")
	if err != nil {
		return nil, err
	}
	promptContent, err := textInsideTag(templateContent, "prompt")
	if err != nil {
		return nil, err
	}

	tpl := &Template{}
	if tpl.Prompt.Header, err = textInsideTag(promptContent, "header"); err != nil {
		return nil, err
	}
	if tpl.Prompt.File, err = textInsideTag(promptContent, "file"); err != nil {
		return nil, err
	}
	if tpl.Prompt.Footer, err = textInsideTag(promptContent, "footer"); err != nil {
		return nil, err
	}

	if !partRequired && !strings.Contains(templateContent, "<part>") {
		tpl.Part = Builtin().Part
		return tpl, nil
	}

	partContent, err := textInsideTag(templateContent, "part")
	if err != nil {
		return nil, err
	}
	if tpl.Part.Header, err = textInsideTag(partContent, "header"); err != nil {
		return nil, err
	}
	if tpl.Part.Footer, err = textInsideTag(partContent, "footer"); err != nil {
		return nil, err
	}
	if tpl.Part.Pending, err = textInsideTag(partContent, "pending"); err != nil {
		return nil, err
	}

	return tpl, nil
}

// textInsideTag extracts the content between the first opening and the last
// closing occurrence of a tag, so a section may itself contain tag-like
// text. The extracted block is dedented and stripped of one surrounding
// newline, which lets templates indent sections freely.
func textInsideTag(text, tag string) (string, error) {
	opening := "<" + tag + ">"
	closing := "</" + tag + ">"

	start := strings.Index(text, opening)
	if start < 0 {
		return "", fmt.Errorf("template error: opening tag %s not found", opening)
	}

	end := strings.LastIndex(text, closing)
	if end < 0 {
		return "", fmt.Errorf("template error: closing tag %s not found (opening tag is on line %d)",
			closing, lineOf(text, start))
	}
	if end < start {
		return "", fmt.Errorf("template error: closing tag %s on line %d appears before opening tag %s on line %d",
			closing, lineOf(text, end), opening, lineOf(text, start))
	}

	content := text[start+len(opening) : end]
	return trimSection(trimIndentation(content)), nil
}

// lineOf returns the 1-based line number of a byte offset.
func lineOf(text string, offset int) int {
	return strings.Count(text[:offset], "\n") + 1
}

// trimIndentation removes the common leading whitespace shared by all
// non-empty lines.
func trimIndentation(content string) string {
	lines := strings.Split(content, "\n")

	minIndent := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return content
	}

	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		} else if strings.TrimSpace(line) == "" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// trimSection strips at most one leading and one trailing newline, making
// inline (<header>Text</header>) and block forms equivalent.
func trimSection(content string) string {
	content = strings.TrimPrefix(content, "\n")
	return strings.TrimSuffix(content, "\n")
}
