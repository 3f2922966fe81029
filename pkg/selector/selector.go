// Package selector drives file enumeration through the filter chain and
// produces the ordered, deduplicated list of selected files together with
// the aggregate statistics the template placeholders need.
package selector

import (
	"fmt"
	"sort"
	"strings"

	"promptpack/pkg/config"
	"promptpack/pkg/filter"
	"promptpack/pkg/walker"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// SelectedFile is a candidate that survived the filter chain, with its
// content loaded. The time-window check already ran in the filter chain, so
// no timestamp is carried past selection.
type SelectedFile struct {
	Path    string // display path, as discovered
	AbsPath string
	Size    int64
	Content string
}

// Selection is the ordered result of a run, plus aggregates. Immutable once
// returned.
type Selection struct {
	Root      string
	Files     []SelectedFile
	TotalSize int64
}

// Select evaluates candidates through the chain, deduplicates by canonical
// path, sorts by path, and loads content for the survivors. It fails when no
// files remain or, outside listing modes, when the combined size exceeds the
// configured maximum.
func Select(cfg *config.Config, chain *filter.Chain, candidates []*walker.Candidate, logger *zap.Logger) (*Selection, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := map[string]bool{}
	sel := &Selection{Root: cfg.Root}

	for _, c := range candidates {
		if seen[c.AbsPath] {
			continue
		}
		seen[c.AbsPath] = true

		verdict := chain.Evaluate(c)
		if !verdict.Include {
			continue
		}

		content, err := c.Content()
		if err != nil {
			logger.Warn("Could not read selected file, excluding",
				zap.String("path", c.Path), zap.Error(err))
			continue
		}

		sel.Files = append(sel.Files, SelectedFile{
			Path:    c.Path,
			AbsPath: c.AbsPath,
			Size:    c.Size,
			Content: string(content),
		})
		sel.TotalSize += c.Size
	}

	sort.Slice(sel.Files, func(i, j int) bool {
		return sel.Files[i].Path < sel.Files[j].Path
	})

	if len(sel.Files) == 0 {
		return nil, fmt.Errorf("no files to process")
	}

	if !cfg.ListOnly() && cfg.MaxTotalSize > 0 && sel.TotalSize > cfg.MaxTotalSize {
		return nil, fmt.Errorf(
			"total size of selected files (%d bytes) exceeds --max-total-size (%d bytes); use --dry-run to inspect the selection",
			sel.TotalSize, cfg.MaxTotalSize)
	}

	logger.Debug("Selection complete",
		zap.Int("files", len(sel.Files)),
		zap.Int64("totalSize", sel.TotalSize))

	return sel, nil
}

// Paths returns the display paths in selection order.
func (s *Selection) Paths() []string {
	paths := make([]string, len(s.Files))
	for i, f := range s.Files {
		paths[i] = f.Path
	}
	return paths
}

// PathList returns the newline-joined path list used by the
// <all-file-paths> placeholder and the --paths mode.
func (s *Selection) PathList() string {
	return strings.Join(s.Paths(), "\n")
}

// HumanTotalSize formats the combined byte size for the
// <total-file-size> placeholder and the --size mode.
func (s *Selection) HumanTotalSize() string {
	return humanize.Bytes(uint64(s.TotalSize))
}

// FileSizes returns one "size path" line per file, largest first, for the
// --file-sizes mode.
func (s *Selection) FileSizes() string {
	files := make([]SelectedFile, len(s.Files))
	copy(files, s.Files)
	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}
		return files[i].Path < files[j].Path
	})

	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%-10s %s\n", humanize.Bytes(uint64(f.Size)), f.Path)
	}
	fmt.Fprintf(&b, "%-10s total", humanize.Bytes(uint64(s.TotalSize)))
	return b.String()
}
