package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"promptpack/pkg/config"
	"promptpack/pkg/ignore"
	"promptpack/pkg/walker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newChain(t *testing.T, cfg *config.Config, rules *ignore.Index) *Chain {
	t.Helper()
	chain, err := New(cfg, rules, nil)
	require.NoError(t, err)
	return chain
}

// evaluate walks the root and returns the verdict for the file whose path
// ends with suffix.
func evaluate(t *testing.T, chain *Chain, root, suffix string) Verdict {
	t.Helper()
	candidates, err := walker.Walk(root, walker.Options{Hidden: true}, nil)
	require.NoError(t, err)

	for _, c := range candidates {
		if filepath.ToSlash(c.Path) == filepath.ToSlash(filepath.Join(root, suffix)) {
			return chain.Evaluate(c)
		}
	}
	t.Fatalf("file %s not found under %s", suffix, root)
	return Verdict{}
}

func TestPlainTextFilePasses(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	chain := newChain(t, &config.Config{Root: root}, nil)

	v := evaluate(t, chain, root, "main.go")
	assert.True(t, v.Include)
	assert.Empty(t, v.Stage)
}

func TestHiddenFileExcludedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "SECRET=1\n")

	chain := newChain(t, &config.Config{Root: root}, nil)
	v := evaluate(t, chain, root, ".env")

	assert.False(t, v.Include)
	assert.Equal(t, StageDefaults, v.Stage)

	chain = newChain(t, &config.Config{Root: root, Hidden: true}, nil)
	assert.True(t, evaluate(t, chain, root, ".env").Include)
}

func TestOversizedFileExcluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.txt", "aaaaaaaaaa")

	chain := newChain(t, &config.Config{Root: root, MaxFilesize: 5}, nil)
	v := evaluate(t, chain, root, "big.txt")

	assert.False(t, v.Include)
	assert.Equal(t, StageDefaults, v.Stage)
	assert.Contains(t, v.Reason, "max-filesize")
}

func TestBinaryFileExcludedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "data.bin", "abc\x00def")

	chain := newChain(t, &config.Config{Root: root}, nil)
	v := evaluate(t, chain, root, "data.bin")

	assert.False(t, v.Include)
	assert.Equal(t, StageDefaults, v.Stage)

	chain = newChain(t, &config.Config{Root: root, Binary: true}, nil)
	assert.True(t, evaluate(t, chain, root, "data.bin").Include)
}

func TestIgnoreRulesExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.log", "log line\n")

	rules := &ignore.Index{}
	rules.Add(ignore.CompileLines(ignore.OriginGitignore, ".gitignore", mustAbs(t, root), []string{"*.log"}))

	chain := newChain(t, &config.Config{Root: root}, rules)
	v := evaluate(t, chain, root, "app.log")

	assert.False(t, v.Include)
	assert.Equal(t, StageIgnore, v.Stage)
	// The reason names the deciding pattern and its source file and line.
	assert.Contains(t, v.Reason, `"*.log"`)
	assert.Contains(t, v.Reason, ".gitignore:1")
}

func TestIncludeOverridesIgnore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "build/output.log", "result\n")

	rules := &ignore.Index{}
	rules.Add(ignore.CompileLines(ignore.OriginGitignore, ".gitignore", mustAbs(t, root), []string{"build/"}))

	cfg := &config.Config{Root: root, Include: []string{"build/output.log"}}
	chain := newChain(t, cfg, rules)

	v := evaluate(t, chain, root, "build/output.log")
	assert.True(t, v.Include)
}

func TestIncludeGlobsRestrictSelection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "README.md", "# readme\n")

	cfg := &config.Config{Root: root, Include: []string{"*.go"}}
	chain := newChain(t, cfg, nil)

	assert.True(t, evaluate(t, chain, root, "main.go").Include)

	v := evaluate(t, chain, root, "README.md")
	assert.False(t, v.Include)
	assert.Equal(t, StageInclude, v.Stage)
}

func TestExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "main_test.go", "package main\n")

	cfg := &config.Config{Root: root, Exclude: []string{"*_test.go"}}
	chain := newChain(t, cfg, nil)

	assert.True(t, evaluate(t, chain, root, "main.go").Include)

	v := evaluate(t, chain, root, "main_test.go")
	assert.False(t, v.Include)
	assert.Equal(t, StageExclude, v.Stage)
}

func TestContainFragments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\nfunc Handler() {}\n")
	writeFile(t, root, "b.go", "package b\n")

	cfg := &config.Config{Root: root, Contain: []string{"Handler"}}
	chain := newChain(t, cfg, nil)

	assert.True(t, evaluate(t, chain, root, "a.go").Include)

	v := evaluate(t, chain, root, "b.go")
	assert.False(t, v.Include)
	assert.Equal(t, StageContain, v.Stage)
}

func TestTimeWindow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "old.txt", "old\n")

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "old.txt"), past, past))

	cutoff := time.Now().Add(-24 * time.Hour)

	cfg := &config.Config{Root: root, After: &cutoff}
	chain := newChain(t, cfg, nil)
	v := evaluate(t, chain, root, "old.txt")
	assert.False(t, v.Include)
	assert.Equal(t, StageTime, v.Stage)

	cfg = &config.Config{Root: root, Before: &cutoff}
	chain = newChain(t, cfg, nil)
	assert.True(t, evaluate(t, chain, root, "old.txt").Include)
}

func TestMaxDepthExcludesDeepFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.txt", "deep\n")

	cfg := &config.Config{Root: root, MaxDepth: 1}
	chain := newChain(t, cfg, nil)

	candidates, err := walker.Walk(root, walker.Options{}, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	v := chain.Evaluate(candidates[0])
	assert.False(t, v.Include)
	assert.Equal(t, StageStructural, v.Stage)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "skip.log", "log\n")

	rules := &ignore.Index{}
	rules.Add(ignore.CompileLines(ignore.OriginGitignore, ".gitignore", mustAbs(t, root), []string{"*.log"}))

	chain := newChain(t, &config.Config{Root: root}, rules)

	candidates, err := walker.Walk(root, walker.Options{}, nil)
	require.NoError(t, err)

	for _, c := range candidates {
		first := chain.Evaluate(c)
		second := chain.Evaluate(c)
		assert.Equal(t, first, second)
	}
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
