package template

import (
	"fmt"
	"os"
	"path/filepath"
)

// CopyDefault writes the built-in template verbatim to TemplateFileName in
// the given directory, giving users an editable starting point. An existing
// file is never overwritten.
func CopyDefault(dir string) (string, error) {
	destination := filepath.Join(dir, TemplateFileName)

	if _, err := os.Stat(destination); err == nil {
		return "", fmt.Errorf("template file %s already exists", destination)
	}

	if err := os.WriteFile(destination, []byte(BuiltinSource()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write template to %s: %w", destination, err)
	}

	return fmt.Sprintf("Template was copied to %s.", destination), nil
}
