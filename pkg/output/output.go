// Package output delivers assembled parts to stdout, to files, or to the
// system clipboard.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"promptpack/pkg/split"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Timestamp tags expanded in output file paths.
const (
	TagTime    = "{TIME}"
	TagTimeUTC = "{TIME_UTC}"

	timeLayout = "2006-01-02_15-04-05"
)

// ExpandTimeTags substitutes {TIME} and {TIME_UTC} in a path with the given
// moment, formatted as 2006-01-02_15-04-05 in local time and UTC.
func ExpandTimeTags(path string, now time.Time) string {
	path = strings.ReplaceAll(path, TagTime, now.Format(timeLayout))
	return strings.ReplaceAll(path, TagTimeUTC, now.UTC().Format(timeLayout))
}

// WriteStdout prints every part to the writer. A blank line separates parts
// so the boundary stays visible when several parts stream to a terminal.
func WriteStdout(w io.Writer, parts []split.Part) error {
	for i, p := range parts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, p.Text); err != nil {
			return err
		}
	}
	return nil
}

// WriteFiles writes the parts to disk. A single part goes to the path as
// given; multiple parts each get a zero-padded numeric suffix (.001, .002,
// ...). Parent directories are created as needed. Returns the written paths.
func WriteFiles(path string, parts []split.Part, now time.Time, logger *zap.Logger) ([]string, error) {
	path = ExpandTimeTags(path, now)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	var written []string
	for _, p := range parts {
		target := path
		if len(parts) > 1 {
			target = fmt.Sprintf("%s.%03d", path, p.Number)
		}
		if err := os.WriteFile(target, []byte(p.Text+"\n"), 0o644); err != nil {
			return written, fmt.Errorf("failed to write output file %s: %w", target, err)
		}
		logger.Debug("Wrote output file", zap.String("path", target), zap.Int("bytes", len(p.Text)+1))
		written = append(written, target)
	}
	return written, nil
}

// CopyToClipboard places the parts on the system clipboard one at a time.
// With several parts and an interactive stdin, the user is prompted to press
// Enter before each subsequent part replaces the previous one.
func CopyToClipboard(parts []split.Part, in io.Reader, out io.Writer) error {
	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}

	reader := bufio.NewReader(in)
	for i, p := range parts {
		if i > 0 && interactive {
			fmt.Fprintf(out, "Press Enter to copy part %d of %d to the clipboard...", p.Number, p.Total)
			if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
				return fmt.Errorf("failed to read confirmation: %w", err)
			}
		}
		if err := clipboard.WriteAll(p.Text); err != nil {
			return fmt.Errorf("failed to copy part %d to the clipboard: %w", p.Number, err)
		}
		if len(parts) > 1 {
			fmt.Fprintf(out, "Copied part %d of %d to the clipboard.\n", p.Number, p.Total)
		} else {
			fmt.Fprintln(out, "Copied the output to the clipboard.")
		}
	}
	return nil
}
