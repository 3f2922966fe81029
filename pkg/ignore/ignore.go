// Package ignore evaluates paths against ordered sets of gitignore-syntax
// rules collected from multiple sources. Pattern matching is delegated to
// github.com/monochromegane/go-gitignore; this package keeps per-line
// bookkeeping so that the last matching pattern wins within a rule set and
// later rule sets override earlier ones, including `!` re-includes across
// sources.
package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"go.uber.org/zap"
)

// Origin identifies the source of a rule set, in ascending precedence order.
type Origin int

const (
	OriginGlobalExcludes Origin = iota
	OriginGitignore
	OriginCustomFile
	OriginHomeIgnore
	OriginProjectIgnore
	OriginCLIInclude
	OriginCLIExclude
)

func (o Origin) String() string {
	switch o {
	case OriginGlobalExcludes:
		return "global excludes"
	case OriginGitignore:
		return ".gitignore"
	case OriginCustomFile:
		return "custom ignore file"
	case OriginHomeIgnore:
		return "home " + IgnoreFileName
	case OriginProjectIgnore:
		return "project " + IgnoreFileName
	case OriginCLIInclude:
		return "--include pattern"
	case OriginCLIExclude:
		return "--exclude pattern"
	}
	return "unknown"
}

// IgnoreFileName is the project/home level ignore file this tool reads in
// addition to .gitignore files.
const IgnoreFileName = ".promptpack_ignore"

// Verdict is the outcome of matching a path against a rule set.
type Verdict int

const (
	// VerdictNone means no pattern matched; the next source decides.
	VerdictNone Verdict = iota
	// VerdictExclude means the last matching pattern excludes the path.
	VerdictExclude
	// VerdictReinclude means the last matching pattern was negated (`!`).
	VerdictReinclude
)

// Rule is a single compiled pattern line.
type Rule struct {
	matcher gitignore.IgnoreMatcher
	Negate  bool
	Line    string
	LineNo  int
}

// RuleSet is an ordered group of rules from one origin. Within a set the
// last pattern that matches a path determines the verdict.
type RuleSet struct {
	Origin Origin
	Source string // path of the file the rules came from
	Base   string // directory the patterns are anchored to
	rules  []Rule
}

// CompileLines compiles pattern lines into a RuleSet anchored at base.
// Comment and blank lines are skipped, matching gitignore file syntax.
func CompileLines(origin Origin, source, base string, lines []string) *RuleSet {
	rs := &RuleSet{Origin: origin, Source: source, Base: base}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		negate := false
		pattern := trimmed
		if strings.HasPrefix(pattern, "!") {
			negate = true
			pattern = strings.TrimPrefix(pattern, "!")
		}
		if strings.HasPrefix(pattern, `\#`) || strings.HasPrefix(pattern, `\!`) {
			pattern = pattern[1:]
		}
		if pattern == "" {
			continue
		}

		rs.rules = append(rs.rules, Rule{
			matcher: gitignore.NewGitIgnoreFromReader(base, strings.NewReader(pattern)),
			Negate:  negate,
			Line:    trimmed,
			LineNo:  i + 1,
		})
	}

	return rs
}

// CompileFile reads an ignore file and compiles its lines. The patterns are
// anchored to the directory containing the file, except when base overrides
// it (used for the global excludes file and home-level ignore file, whose
// patterns apply to the walked tree).
func CompileFile(origin Origin, path, base string) (*RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}
	if base == "" {
		base = filepath.Dir(path)
	}
	return CompileLines(origin, path, base, strings.Split(string(content), "\n")), nil
}

// Match evaluates an absolute path against the rule set. The last matching
// pattern wins; a negated pattern yields VerdictReinclude.
func (rs *RuleSet) Match(absPath string, isDir bool) Verdict {
	verdict, _ := rs.match(absPath, isDir)
	return verdict
}

// match returns the verdict together with the rule that decided it.
func (rs *RuleSet) match(absPath string, isDir bool) (Verdict, *Rule) {
	rel, err := filepath.Rel(rs.Base, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return VerdictNone, nil // path is outside this rule set's directory
	}

	verdict := VerdictNone
	var deciding *Rule
	for i := range rs.rules {
		rule := &rs.rules[i]
		if rule.matcher.Match(absPath, isDir) {
			deciding = rule
			if rule.Negate {
				verdict = VerdictReinclude
			} else {
				verdict = VerdictExclude
			}
		}
	}
	return verdict, deciding
}

// Empty reports whether the rule set holds no usable patterns.
func (rs *RuleSet) Empty() bool {
	return len(rs.rules) == 0
}

// Index is the ordered collection of all active rule sets for a run.
// Later sets override the verdicts of earlier ones.
type Index struct {
	sets []*RuleSet
}

// Add appends a rule set. Nil or empty sets are dropped.
func (ix *Index) Add(rs *RuleSet) {
	if rs != nil && !rs.Empty() {
		ix.sets = append(ix.sets, rs)
	}
}

// Sets returns the rule sets in precedence order.
func (ix *Index) Sets() []*RuleSet {
	return ix.sets
}

// Match resolves the combined verdict for a path: each rule set is consulted
// in order and the last definite verdict stands.
func (ix *Index) Match(absPath string, isDir bool) Verdict {
	verdict, _, _ := ix.Explain(absPath, isDir)
	return verdict
}

// Explain resolves the combined verdict together with the rule set and rule
// that decided it, so exclusion messages can name the pattern's source file
// and line.
func (ix *Index) Explain(absPath string, isDir bool) (Verdict, *RuleSet, *Rule) {
	verdict := VerdictNone
	var set *RuleSet
	var rule *Rule
	for _, rs := range ix.sets {
		if v, r := rs.match(absPath, isDir); v != VerdictNone {
			verdict, set, rule = v, rs, r
		}
	}
	return verdict, set, rule
}

// Options selects which ignore sources are active.
type Options struct {
	UseGitignore      bool
	UseProjectAndHome bool
	CustomFiles       []string // fatal when missing: the user asked for them
	HomeDir           string   // override for tests; defaults to os.UserHomeDir
}

// Load builds the rule-set index for a walk rooted at root. Source order
// (ascending precedence): global git excludes, ancestor .gitignore files from
// the filesystem root down to the walk root, custom ignore files, home-level
// ignore file, project-level ignore file.
func Load(root string, opts Options, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	ix := &Index{}

	if opts.UseGitignore {
		if global := globalExcludesPath(home); global != "" {
			rs, err := CompileFile(OriginGlobalExcludes, global, absRoot)
			if err == nil {
				ix.Add(rs)
				logger.Debug("Loaded global excludes file", zap.String("file", global))
			}
		}

		for _, dir := range ancestorDirs(absRoot) {
			path := filepath.Join(dir, ".gitignore")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			rs, err := CompileFile(OriginGitignore, path, "")
			if err != nil {
				logger.Warn("Failed to load .gitignore file", zap.String("file", path), zap.Error(err))
				continue
			}
			ix.Add(rs)
			logger.Debug("Loaded .gitignore file", zap.String("file", path))
		}
	}

	for _, path := range opts.CustomFiles {
		rs, err := CompileFile(OriginCustomFile, path, absRoot)
		if err != nil {
			// Explicitly requested files must exist.
			return nil, err
		}
		ix.Add(rs)
		logger.Debug("Loaded custom ignore file", zap.String("file", path))
	}

	if opts.UseProjectAndHome {
		if home != "" {
			path := filepath.Join(home, IgnoreFileName)
			if _, err := os.Stat(path); err == nil {
				rs, err := CompileFile(OriginHomeIgnore, path, absRoot)
				if err == nil {
					ix.Add(rs)
					logger.Debug("Loaded home ignore file", zap.String("file", path))
				}
			}
		}

		path := filepath.Join(absRoot, IgnoreFileName)
		if _, err := os.Stat(path); err == nil {
			rs, err := CompileFile(OriginProjectIgnore, path, "")
			if err == nil {
				ix.Add(rs)
				logger.Debug("Loaded project ignore file", zap.String("file", path))
			}
		}
	}

	return ix, nil
}

// ancestorDirs lists the directories from the filesystem root down to and
// including dir, so that deeper .gitignore files override shallower ones.
func ancestorDirs(dir string) []string {
	var dirs []string
	for {
		dirs = append([]string{dir}, dirs...)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return dirs
}

// globalExcludesPath returns git's conventional global excludes file if it
// exists. Reading .gitconfig for core.excludesFile is out of scope; the
// XDG default location covers the common case.
func globalExcludesPath(home string) string {
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".config", "git", "ignore")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
