package logging

import (
	"go.uber.org/zap"
)

// New builds the application logger. Verbose mode switches to the
// development config so per-file filter decisions become visible.
func New(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config

	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = true
	}

	cfg.InitialFields = map[string]interface{}{
		"appName": "promptpack",
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop(), err
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}
