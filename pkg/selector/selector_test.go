package selector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"promptpack/pkg/config"
	"promptpack/pkg/filter"
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

func selectAll(t *testing.T, cfg *config.Config) (*Selection, error) {
	t.Helper()
	chain, err := filter.New(cfg, nil, nil)
	require.NoError(t, err)

	candidates, err := walker.Walk(cfg.Root, walker.Options{}, nil)
	require.NoError(t, err)

	return Select(cfg, chain, candidates, nil)
}

func TestSelectOrdersByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zebra.txt", "z")
	writeFile(t, root, "alpha.txt", "a")
	writeFile(t, root, "middle.txt", "m")

	sel, err := selectAll(t, &config.Config{Root: root})
	require.NoError(t, err)

	paths := sel.Paths()
	require.Len(t, paths, 3)
	assert.True(t, paths[0] < paths[1] && paths[1] < paths[2])
}

func TestSelectIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")
	writeFile(t, root, "b.txt", "b")

	first, err := selectAll(t, &config.Config{Root: root})
	require.NoError(t, err)
	second, err := selectAll(t, &config.Config{Root: root})
	require.NoError(t, err)

	assert.Equal(t, first.Paths(), second.Paths())
	assert.Equal(t, first.TotalSize, second.TotalSize)
}

func TestSelectDeduplicatesByAbsolutePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")

	cfg := &config.Config{Root: root}
	chain, err := filter.New(cfg, nil, nil)
	require.NoError(t, err)

	path := filepath.Join(root, "a.txt")
	candidates := walker.FromPaths([]string{path, path}, nil)
	require.Len(t, candidates, 2)

	sel, err := Select(cfg, chain, candidates, nil)
	require.NoError(t, err)

	assert.Len(t, sel.Files, 1)
	assert.EqualValues(t, 5, sel.TotalSize)
}

func TestSelectLoadsContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello world")

	sel, err := selectAll(t, &config.Config{Root: root})
	require.NoError(t, err)

	require.Len(t, sel.Files, 1)
	assert.Equal(t, "hello world", sel.Files[0].Content)
}

func TestSelectFailsWhenNothingSelected(t *testing.T) {
	_, err := selectAll(t, &config.Config{Root: t.TempDir()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to process")
}

func TestSelectEnforcesMaxTotalSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "0123456789")
	writeFile(t, root, "b.txt", "0123456789")

	_, err := selectAll(t, &config.Config{Root: root, MaxTotalSize: 15})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max-total-size")
	assert.Contains(t, err.Error(), "dry-run")
}

func TestSelectListModeBypassesMaxTotalSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "0123456789")
	writeFile(t, root, "b.txt", "0123456789")

	sel, err := selectAll(t, &config.Config{Root: root, MaxTotalSize: 15, DryRun: true})
	require.NoError(t, err)

	assert.Len(t, sel.Files, 2)
	assert.EqualValues(t, 20, sel.TotalSize)
}

func TestPathList(t *testing.T) {
	sel := &Selection{Files: []SelectedFile{{Path: "a"}, {Path: "b"}}}
	assert.Equal(t, "a\nb", sel.PathList())
}

func TestHumanTotalSize(t *testing.T) {
	sel := &Selection{TotalSize: 1500}
	assert.Equal(t, "1.5 kB", sel.HumanTotalSize())
}

func TestFileSizesLargestFirst(t *testing.T) {
	sel := &Selection{
		Files: []SelectedFile{
			{Path: "small.txt", Size: 10},
			{Path: "large.txt", Size: 3000},
		},
		TotalSize: 3010,
	}

	listing := sel.FileSizes()

	assert.Less(t,
		indexOf(t, listing, "large.txt"),
		indexOf(t, listing, "small.txt"))
	assert.Contains(t, listing, "total")
}

func TestTree(t *testing.T) {
	root := t.TempDir()
	sel := &Selection{
		Root: root,
		Files: []SelectedFile{
			{Path: "main.go", AbsPath: filepath.Join(root, "main.go")},
			{Path: "pkg/util.go", AbsPath: filepath.Join(root, "pkg", "util.go")},
		},
	}

	tree := sel.Tree()

	assert.Contains(t, tree, ".")
	assert.Contains(t, tree, "pkg")
	assert.Contains(t, tree, "util.go")
	assert.Contains(t, tree, "main.go")
	// Directories render before files at the same level.
	assert.Less(t, indexOf(t, tree, "pkg"), indexOf(t, tree, "main.go"))
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	i := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, i, 0, "%q not found", needle)
	return i
}
