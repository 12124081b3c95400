// Package log builds the server logger from configuration.
package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/printnow/portal/pkg/config"
)

// NewLogger returns a new logger configured from cfg. When cfg.Log.Path is
// set, the returned file is the log destination and must be closed by the
// caller.
func NewLogger(cfg *config.Config) (*log.Logger, *os.File, error) {
	if cfg == nil {
		return nil, nil, config.ErrNilConfig
	}

	var (
		f   *os.File
		out io.Writer = os.Stderr
	)
	if cfg.Log.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Log.Path), 0o700); err != nil {
			return nil, nil, err //nolint:wrapcheck
		}
		var err error
		f, err = os.OpenFile(cfg.Log.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec
		if err != nil {
			return nil, nil, err //nolint:wrapcheck
		}
		out = f
	}

	tf := cfg.Log.TimeFormat
	if tf == "" {
		tf = time.DateTime
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      tf,
	})

	switch {
	case config.IsVerbose():
		logger.SetReportCaller(true)
		fallthrough
	case config.IsDebug():
		logger.SetLevel(log.DebugLevel)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	return logger, f, nil
}
