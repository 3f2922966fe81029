// Package filter decides, for each candidate file, whether it belongs in the
// output. The decision is an ordered pipeline of stages, each of which may
// short-circuit to an exclusion; the tagged Verdict records which stage
// decided and why, so listing modes can explain their results.
package filter

import (
	"bytes"
	"fmt"
	"path/filepath"

	"promptpack/pkg/config"
	"promptpack/pkg/ignore"
	"promptpack/pkg/walker"

	"go.uber.org/zap"
)

// Stage names, in evaluation order.
const (
	StageStructural = "structural"
	StageDefaults   = "defaults"
	StageIgnore     = "ignore"
	StageInclude    = "include"
	StageExclude    = "exclude"
	StageContain    = "contain"
	StageTime       = "time-window"
)

// Verdict is the outcome of evaluating one candidate.
type Verdict struct {
	Include bool
	Stage   string // stage that excluded; empty when included
	Reason  string
}

// Included is the verdict for a file that passed every stage.
var Included = Verdict{Include: true}

func excluded(stage, reason string) Verdict {
	return Verdict{Stage: stage, Reason: reason}
}

// Chain evaluates candidates against all active criteria. Immutable after
// construction; safe to reuse across candidates.
type Chain struct {
	cfg      *config.Config
	root     string
	rules    *ignore.Index
	includes *ignore.RuleSet
	excludes *ignore.RuleSet
	logger   *zap.Logger
}

// New builds the chain for a run. The CLI include/exclude globs are compiled
// once here; patterns were already syntax-checked during config validation.
func New(cfg *config.Config, rules *ignore.Index, logger *zap.Logger) (*Chain, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}

	ch := &Chain{
		cfg:    cfg,
		root:   root,
		rules:  rules,
		logger: logger,
	}
	if len(cfg.Include) > 0 {
		ch.includes = ignore.CompileLines(ignore.OriginCLIInclude, "--include", root, cfg.Include)
	}
	if len(cfg.Exclude) > 0 {
		ch.excludes = ignore.CompileLines(ignore.OriginCLIExclude, "--exclude", root, cfg.Exclude)
	}
	return ch, nil
}

// Evaluate runs the candidate through all stages in order. Evaluation is
// idempotent: the same candidate and configuration always produce the same
// verdict.
func (ch *Chain) Evaluate(c *walker.Candidate) Verdict {
	for _, stage := range []func(*walker.Candidate) Verdict{
		ch.structural,
		ch.defaults,
		ch.ignoreStage,
		ch.includeStage,
		ch.excludeStage,
		ch.containStage,
		ch.timeStage,
	} {
		if v := stage(c); !v.Include {
			ch.logger.Debug("Excluding file",
				zap.String("path", c.Path),
				zap.String("stage", v.Stage),
				zap.String("reason", v.Reason))
			return v
		}
	}
	return Included
}

// structural rejects entries the walk itself cannot use: paths nested deeper
// than the configured maximum and symbolic links when link-following is off.
func (ch *Chain) structural(c *walker.Candidate) Verdict {
	if ch.cfg.MaxDepth > 0 && c.Depth > ch.cfg.MaxDepth {
		return excluded(StageStructural, fmt.Sprintf("depth %d exceeds maximum %d", c.Depth, ch.cfg.MaxDepth))
	}
	if c.Symlink && !ch.cfg.FollowLinks {
		return excluded(StageStructural, "symbolic link (use --follow-links to include)")
	}
	return Included
}

// defaults applies the default exclusions: hidden entries, oversized files,
// and binary content, each individually overridable.
func (ch *Chain) defaults(c *walker.Candidate) Verdict {
	if !ch.cfg.Hidden && walker.HasHiddenComponent(ch.root, c.AbsPath) {
		return excluded(StageDefaults, "hidden (use --hidden to include)")
	}
	if ch.cfg.MaxFilesize > 0 && c.Size > ch.cfg.MaxFilesize {
		return excluded(StageDefaults, fmt.Sprintf("size %d exceeds --max-filesize %d", c.Size, ch.cfg.MaxFilesize))
	}
	if !ch.cfg.Binary {
		sample, err := c.Sample()
		if err != nil {
			ch.logger.Warn("Could not read file for binary check, excluding",
				zap.String("path", c.Path), zap.Error(err))
			return excluded(StageDefaults, "unreadable")
		}
		if !walker.IsText(sample) {
			return excluded(StageDefaults, "binary content (use --binary to include)")
		}
	}
	return Included
}

// ignoreStage resolves the path against all active ignore sources. A later
// source's re-include (`!` pattern) overrides an earlier source's exclude,
// and a path matching an --include glob is re-admitted even when ignored.
func (ch *Chain) ignoreStage(c *walker.Candidate) Verdict {
	if ch.rules == nil {
		return Included
	}
	verdict, set, rule := ch.rules.Explain(c.AbsPath, false)
	if verdict != ignore.VerdictExclude {
		return Included
	}
	if ch.includes != nil && ch.includes.Match(c.AbsPath, false) != ignore.VerdictNone {
		return Included
	}
	reason := "matched an ignore pattern"
	if set != nil && rule != nil {
		reason = fmt.Sprintf("matched %s pattern %q (%s:%d)", set.Origin, rule.Line, set.Source, rule.LineNo)
	}
	return excluded(StageIgnore, reason)
}

// includeStage admits only files matching at least one --include glob. The
// stage is skipped entirely when no include patterns are configured.
func (ch *Chain) includeStage(c *walker.Candidate) Verdict {
	if ch.includes == nil {
		return Included
	}
	if ch.includes.Match(c.AbsPath, false) == ignore.VerdictNone {
		return excluded(StageInclude, "does not match any --include pattern")
	}
	return Included
}

// excludeStage drops files matching any --exclude glob, overriding both the
// ignore sources and the include patterns.
func (ch *Chain) excludeStage(c *walker.Candidate) Verdict {
	if ch.excludes == nil {
		return Included
	}
	if ch.excludes.Match(c.AbsPath, false) == ignore.VerdictExclude {
		return excluded(StageExclude, "matched an --exclude pattern")
	}
	return Included
}

// containStage admits only files whose content holds at least one of the
// configured --contain fragments (case-sensitive).
func (ch *Chain) containStage(c *walker.Candidate) Verdict {
	if len(ch.cfg.Contain) == 0 {
		return Included
	}
	content, err := c.Content()
	if err != nil {
		ch.logger.Warn("Could not read file for content check, excluding",
			zap.String("path", c.Path), zap.Error(err))
		return excluded(StageContain, "unreadable")
	}
	for _, fragment := range ch.cfg.Contain {
		if bytes.Contains(content, []byte(fragment)) {
			return Included
		}
	}
	return excluded(StageContain, "does not contain any --contain text")
}

// timeStage drops files whose modification time falls outside the configured
// window.
func (ch *Chain) timeStage(c *walker.Candidate) Verdict {
	if ch.cfg.After != nil && c.ModTime.Before(*ch.cfg.After) {
		return excluded(StageTime, "modified before --modified-after bound")
	}
	if ch.cfg.Before != nil && c.ModTime.After(*ch.cfg.Before) {
		return excluded(StageTime, "modified after --modified-before bound")
	}
	return Included
}
