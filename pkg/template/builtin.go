package template

import (
	_ "embed"
	"sync"
)

// The default template embedded into the executable. Users can copy it out
// with --copy-template and edit it.
//
//go:embed default.tmpl
var builtinSource string

var (
	builtinOnce sync.Once
	builtin     *Template
)

// BuiltinSource returns the raw text of the embedded default template.
func BuiltinSource() string {
	return builtinSource
}

// Builtin returns the parsed built-in template. The embedded source ships
// with the binary, so a parse failure is a build defect and panics.
func Builtin() *Template {
	builtinOnce.Do(func() {
		tpl, err := parse(builtinSource, true)
		if err != nil {
			panic("built-in template is malformed: " + err.Error())
		}
		builtin = tpl
	})
	return builtin
}
