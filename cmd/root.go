package cmd

import (
	"fmt"
	"os"
	"time"

	"promptpack/pkg/config"
	"promptpack/pkg/filter"
	"promptpack/pkg/ignore"
	"promptpack/pkg/logging"
	"promptpack/pkg/output"
	"promptpack/pkg/render"
	"promptpack/pkg/selector"
	"promptpack/pkg/split"
	"promptpack/pkg/template"
	"promptpack/pkg/walker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootLogger *zap.Logger
	pipedPaths []string
)

// RootCmd is the base command: select files under a directory, render them
// through a template, and deliver the result.
var RootCmd = &cobra.Command{
	Use:   "promptpack [DIRECTORY]",
	Short: "Promptpack assembles project files into a single LLM prompt",
	Long: `Promptpack walks a directory, selects text files through a chain of
filters and ignore rules, renders them through a template, and writes the
assembled prompt to stdout, a file, or the clipboard. Large outputs can be
split into size-bounded parts. File paths piped on stdin bypass the
directory walk and are filtered directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := ""
		if len(args) == 1 {
			root = args[0]
		}
		return run(cmd, root)
	},
	SilenceUsage: true,
}

func run(cmd *cobra.Command, root string) error {
	cfg, err := config.Load(cmd.Flags(), root)
	if err != nil {
		rootLogger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	rootLogger = logger

	if cfg.CopyTemplate {
		message, err := template.CopyDefault(cfg.Root)
		if err != nil {
			logger.Error("Could not copy the template", zap.Error(err))
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), message)
		return nil
	}

	// The template is resolved before any enumeration so that a malformed
	// template fails fast.
	tpl, err := template.Lookup{
		ExplicitPath: cfg.Template,
		Root:         cfg.Root,
		Disabled:     cfg.NoPromptpackTemplate,
	}.Resolve()
	if err != nil {
		logger.Error("Could not resolve the template", zap.Error(err))
		return err
	}

	rules, err := ignore.Load(cfg.Root, ignore.Options{
		UseGitignore:      !cfg.NoGitignore,
		UseProjectAndHome: !cfg.NoPromptpackIgnore,
		CustomFiles:       cfg.IgnoreFiles,
	}, logger)
	if err != nil {
		logger.Error("Could not load ignore rules", zap.Error(err))
		return err
	}

	var candidates []*walker.Candidate
	if len(pipedPaths) > 0 {
		candidates = walker.FromPaths(pipedPaths, logger)
	} else {
		candidates, err = walker.Walk(cfg.Root, walker.Options{
			MaxDepth:    cfg.MaxDepth,
			Hidden:      cfg.Hidden,
			FollowLinks: cfg.FollowLinks,
		}, logger)
		if err != nil {
			logger.Error("Could not walk the directory", zap.Error(err))
			return err
		}
	}

	chain, err := filter.New(cfg, rules, logger)
	if err != nil {
		logger.Error("Invalid filter configuration", zap.Error(err))
		return err
	}

	sel, err := selector.Select(cfg, chain, candidates, logger)
	if err != nil {
		logger.Error("File selection failed", zap.Error(err))
		return err
	}

	if cfg.ListOnly() {
		return printListMode(cmd, cfg, sel)
	}

	doc := render.Render(tpl, sel)
	parts := split.Split(doc, tpl.Part, cfg.MaxPartSize, logger)

	return deliver(cmd, cfg, parts, logger)
}

// printListMode handles the inspection modes that report on the selection
// without rendering anything.
func printListMode(cmd *cobra.Command, cfg *config.Config, sel *selector.Selection) error {
	out := cmd.OutOrStdout()

	switch {
	case cfg.Tree:
		fmt.Fprintln(out, sel.Tree())
	case cfg.FileSizes:
		fmt.Fprintln(out, sel.FileSizes())
	case cfg.Size:
		fmt.Fprintln(out, sel.HumanTotalSize())
	default: // --paths and --dry-run
		fmt.Fprintln(out, sel.PathList())
	}
	return nil
}

func deliver(cmd *cobra.Command, cfg *config.Config, parts []split.Part, logger *zap.Logger) error {
	switch {
	case cfg.Clipboard:
		if err := output.CopyToClipboard(parts, os.Stdin, cmd.OutOrStdout()); err != nil {
			logger.Error("Clipboard delivery failed", zap.Error(err))
			return err
		}
	case cfg.Output != "":
		written, err := output.WriteFiles(cfg.Output, parts, time.Now(), logger)
		if err != nil {
			logger.Error("File output failed", zap.Error(err))
			return err
		}
		for _, path := range written {
			fmt.Fprintf(cmd.OutOrStdout(), "Output was saved to %s.\n", path)
		}
	default:
		if err := output.WriteStdout(cmd.OutOrStdout(), parts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// Execute runs the root command. The bootstrap logger is replaced once the
// configuration is known; piped stdin paths come from main.
func Execute(logger *zap.Logger, piped []string) error {
	rootLogger = logger
	pipedPaths = piped
	return RootCmd.Execute()
}

func init() {
	flags := RootCmd.Flags()

	flags.StringSliceP("include", "i", nil, "Include only files matching these glob patterns")
	flags.StringSliceP("exclude", "x", nil, "Exclude files matching these glob patterns")
	flags.StringSliceP("contain", "C", nil, "Include only files containing these substrings")
	flags.IntP("max-depth", "d", 0, "Maximum directory depth to descend (0 = unlimited)")
	flags.Int64P("max-filesize", "f", config.DefaultMaxFilesize, "Maximum size of a single file in bytes (0 = unlimited)")
	flags.Int64P("max-total-size", "s", config.DefaultMaxTotalSize, "Maximum combined size of all selected files in bytes (0 = unlimited)")
	flags.String("modified-after", "", "Include only files modified after this time (RFC 3339 or YYYY-MM-DD)")
	flags.String("modified-before", "", "Include only files modified before this time (RFC 3339 or YYYY-MM-DD)")
	flags.BoolP("binary", "B", false, "Include binary files")
	flags.BoolP("hidden", "H", false, "Include hidden files and directories")
	flags.BoolP("follow-links", "l", false, "Follow symbolic links")

	flags.BoolP("no-gitignore", "g", false, "Do not respect .gitignore files")
	flags.BoolP("no-promptpack-ignore", "I", false, "Do not respect "+ignore.IgnoreFileName+" files")
	flags.StringSliceP("ignore-file", "u", nil, "Use these custom ignore files")

	flags.StringP("template", "t", "", "Use this template file")
	flags.Bool("no-promptpack-template", false, "Do not look for "+template.TemplateFileName+" files")
	flags.Bool("copy-template", false, "Copy the default template into the directory and exit")

	flags.IntP("max-part-size", "P", 0, "Split the output into parts of at most this many characters (0 = no splitting)")
	flags.StringP("output", "o", "", "Write the output to this file ({TIME} and {TIME_UTC} expand to timestamps)")
	flags.BoolP("clipboard", "c", false, "Copy the output to the clipboard instead of stdout")

	flags.BoolP("dry-run", "D", false, "Print the list of selected files instead of the output")
	flags.Bool("paths", false, "Print the list of selected files")
	flags.Bool("tree", false, "Print the selected files as a tree")
	flags.Bool("file-sizes", false, "Print the selected files with their sizes, largest first")
	flags.Bool("size", false, "Print the combined size of the selected files")

	flags.StringP("options", "p", "", "Read options from this JSON file (flags take precedence)")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
}
