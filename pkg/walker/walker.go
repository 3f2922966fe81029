// Package walker enumerates filesystem entries for the selection pipeline.
// It yields every regular file under a root as a Candidate with the metadata
// the filter chain needs; inclusion decisions belong to pkg/filter, except
// for cheap structural pruning (hidden directories, depth) that only skips
// subtrees the chain would reject file-by-file anyway.
package walker

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// sampleSize is the number of bytes read for binary/text classification.
const sampleSize = 1024

// Candidate is a filesystem path considered for inclusion. Metadata is fixed
// at enumeration time; content is read lazily and at most once.
type Candidate struct {
	Path    string // path as discovered (root-joined), used for display and ordering
	AbsPath string // canonical absolute path, used for deduplication
	Size    int64
	ModTime time.Time
	Symlink bool
	Depth   int // directories below the walk root

	content     []byte
	contentErr  error
	contentRead bool
}

// Content returns the full file content, reading it on first use.
func (c *Candidate) Content() ([]byte, error) {
	if !c.contentRead {
		c.content, c.contentErr = os.ReadFile(c.Path)
		c.contentRead = true
	}
	return c.content, c.contentErr
}

// Sample returns up to the first 1024 bytes of the file for content
// sniffing. When the full content has already been read it is reused.
func (c *Candidate) Sample() ([]byte, error) {
	if c.contentRead {
		if c.contentErr != nil {
			return nil, c.contentErr
		}
		if len(c.content) > sampleSize {
			return c.content[:sampleSize], nil
		}
		return c.content, nil
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buffer := make([]byte, sampleSize)
	n, err := f.Read(buffer)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buffer[:n], nil
}

// Options controls enumeration.
type Options struct {
	MaxDepth    int  // 0 = unlimited; deeper directories are pruned
	Hidden      bool // descend into hidden directories
	FollowLinks bool // descend into symlinked directories
}

// Walk enumerates all regular files under root. Access errors on individual
// entries are logged and skipped rather than aborting the walk.
func Walk(root string, opts Options, logger *zap.Logger) ([]*Candidate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access root %s: %w", root, err)
	}
	if !info.IsDir() {
		c, err := candidateFromPath(root)
		if err != nil {
			return nil, err
		}
		return []*Candidate{c}, nil
	}

	visited := map[string]bool{}
	return walkDir(root, root, 0, opts, visited, logger)
}

func walkDir(root, dir string, baseDepth int, opts Options, visited map[string]bool, logger *zap.Logger) ([]*Candidate, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err == nil {
		if visited[resolved] {
			return nil, nil // symlink cycle
		}
		visited[resolved] = true
	}

	var files []*Candidate

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if path == dir {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		depth := baseDepth + strings.Count(filepath.ToSlash(rel), "/")

		if d.IsDir() {
			if !opts.Hidden && isHiddenName(d.Name()) {
				return fs.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		isLink := d.Type()&fs.ModeSymlink != 0
		if isLink && opts.FollowLinks {
			target, statErr := os.Stat(path)
			if statErr != nil {
				logger.Warn("Error resolving symlink", zap.String("path", path), zap.Error(statErr))
				return nil
			}
			if target.IsDir() {
				sub, subErr := walkDir(root, path, depth+1, opts, visited, logger)
				if subErr != nil {
					return subErr
				}
				files = append(files, sub...)
				return nil
			}
		}

		c, candErr := newCandidate(path, d, isLink, depth)
		if candErr != nil {
			logger.Warn("Error reading file info", zap.String("path", path), zap.Error(candErr))
			return nil
		}
		files = append(files, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	return files, nil
}

// FromPaths builds candidates from an externally supplied path list (for
// example, paths piped in on stdin). Missing paths are logged and skipped.
func FromPaths(paths []string, logger *zap.Logger) []*Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}

	var files []*Candidate
	for _, path := range paths {
		c, err := candidateFromPath(path)
		if err != nil {
			logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			continue
		}
		files = append(files, c)
	}
	return files
}

func newCandidate(path string, d fs.DirEntry, isLink bool, depth int) (*Candidate, error) {
	info, err := d.Info()
	if err != nil {
		return nil, err
	}
	if isLink {
		// Report the target's size and mtime, not the link's.
		if target, statErr := os.Stat(path); statErr == nil {
			info = target
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Candidate{
		Path:    path,
		AbsPath: abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Symlink: isLink,
		Depth:   depth,
	}, nil
}

func candidateFromPath(path string) (*Candidate, error) {
	lstat, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path %s: %w", path, err)
	}

	isLink := lstat.Mode()&fs.ModeSymlink != 0
	info := lstat
	if isLink {
		if target, statErr := os.Stat(path); statErr == nil {
			info = target
		}
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path %s is a directory, not a file", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return &Candidate{
		Path:    path,
		AbsPath: abs,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Symlink: isLink,
	}, nil
}

// isHiddenName reports whether a single path component is hidden.
func isHiddenName(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

// HasHiddenComponent reports whether any component of the path below the
// walk root is hidden. Used by the filter chain so that files inside hidden
// directories are treated as hidden themselves.
func HasHiddenComponent(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHiddenName(part) {
			return true
		}
	}
	return false
}
