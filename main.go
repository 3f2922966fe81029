package main

import (
	"bufio"
	"log"
	"os"
	"strings"

	"promptpack/cmd"

	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	logger, err := zap.NewProduction(zap.Fields(
		zap.String("appName", "promptpack"),
	))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pipedPaths := readPipedPaths()

	if err := cmd.Execute(logger, pipedPaths); err != nil {
		os.Exit(1)
	}

	// Check if stderr is a terminal or a regular file before attempting to sync.
	if term.IsTerminal(int(os.Stderr.Fd())) || isRegularFile(os.Stderr) {
		if syncErr := logger.Sync(); syncErr != nil {
			lowerErr := strings.ToLower(syncErr.Error())
			if !strings.Contains(lowerErr, "invalid argument") {
				log.Printf("Logger sync failed: %v", syncErr)
			}
		}
	}
}

// readPipedPaths reads line-delimited file paths from stdin when input is
// piped in. Returns nil when stdin is attached to a terminal.
func readPipedPaths() []string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	var paths []string
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// isRegularFile checks if the given file is a regular file.
func isRegularFile(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return fileInfo.Mode().IsRegular()
}
