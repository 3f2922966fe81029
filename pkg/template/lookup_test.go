package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalTemplate = `<template>
<prompt>
<header>custom</header>
<file><file-content></file>
<footer>F</footer>
</prompt>
</template>`

func writeTemplate(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(minimalTemplate), 0o644))
	return path
}

func TestResolveExplicitPath(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "my.tmpl")

	tpl, err := Lookup{ExplicitPath: path}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "custom", tpl.Prompt.Header)
}

func TestResolveExplicitPathMissingIsFatal(t *testing.T) {
	_, err := Lookup{ExplicitPath: filepath.Join(t.TempDir(), "absent.tmpl")}.Resolve()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read template")
}

func TestResolveProjectFile(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, TemplateFileName)

	tpl, err := Lookup{Root: root, HomeDir: t.TempDir()}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "custom", tpl.Prompt.Header)
}

func TestResolveHomeFileWhenProjectAbsent(t *testing.T) {
	home := t.TempDir()
	writeTemplate(t, home, TemplateFileName)

	tpl, err := Lookup{Root: t.TempDir(), HomeDir: home}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "custom", tpl.Prompt.Header)
}

func TestResolveProjectBeatsHome(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	writeTemplate(t, root, TemplateFileName)
	require.NoError(t, os.WriteFile(filepath.Join(home, TemplateFileName), []byte("not even a template"), 0o644))

	tpl, err := Lookup{Root: root, HomeDir: home}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "custom", tpl.Prompt.Header)
}

func TestResolveFallsBackToBuiltin(t *testing.T) {
	tpl, err := Lookup{Root: t.TempDir(), HomeDir: t.TempDir()}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Builtin(), tpl)
}

func TestResolveDisabledSkipsProjectAndHome(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, TemplateFileName)

	tpl, err := Lookup{Root: root, HomeDir: t.TempDir(), Disabled: true}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, Builtin(), tpl)
}

func TestResolveMalformedProjectFileIsFatal(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, TemplateFileName), []byte("<template>broken"), 0o644))

	_, err := Lookup{Root: root, HomeDir: t.TempDir()}.Resolve()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse template")
}

func TestCopyDefault(t *testing.T) {
	dir := t.TempDir()

	message, err := CopyDefault(dir)
	require.NoError(t, err)
	assert.Contains(t, message, TemplateFileName)

	content, err := os.ReadFile(filepath.Join(dir, TemplateFileName))
	require.NoError(t, err)
	assert.Equal(t, BuiltinSource(), string(content))
}

func TestCopyDefaultRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateFileName), []byte("mine"), 0o644))

	_, err := CopyDefault(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	content, err := os.ReadFile(filepath.Join(dir, TemplateFileName))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(content))
}
