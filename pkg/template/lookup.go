package template

import (
	"fmt"
	"os"
	"path/filepath"
)

// TemplateFileName is the per-project and per-user template file looked up
// when no explicit --template path is given.
const TemplateFileName = ".promptpack_template"

// Lookup controls template source resolution.
type Lookup struct {
	ExplicitPath string // --template; missing file is a fatal error
	Root         string // project root, searched for TemplateFileName
	HomeDir      string // override for tests; defaults to os.UserHomeDir
	Disabled     bool   // --no-promptpack-template: skip project/home files
}

// Resolve loads and parses the template. Sources are tried in order:
// the explicit path, the project file, the home file, then the embedded
// built-in template.
func (l Lookup) Resolve() (*Template, error) {
	if l.ExplicitPath != "" {
		return parseFile(l.ExplicitPath)
	}

	if !l.Disabled {
		if path := l.findTemplateFile(); path != "" {
			return parseFile(path)
		}
	}

	return Builtin(), nil
}

func (l Lookup) findTemplateFile() string {
	project := filepath.Join(l.Root, TemplateFileName)
	if _, err := os.Stat(project); err == nil {
		return project
	}

	home := l.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	if home != "" {
		candidate := filepath.Join(home, TemplateFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

func parseFile(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	tpl, err := Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	return tpl, nil
}
