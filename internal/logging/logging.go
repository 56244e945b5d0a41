// Package logging builds the go-kit logger shared by the server and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Format selects the log line encoding.
type Format string

const (
	FormatLogfmt Format = "logfmt"
	FormatJSON   Format = "json"
)

// New returns a logger writing to w (stderr when nil) with UTC timestamps and
// caller information, filtered at lvl.
func New(format Format, lvl string, w io.Writer) (log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	option, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}

	writer := log.NewSyncWriter(w)
	var logger log.Logger
	switch Format(strings.ToLower(string(format))) {
	case "", FormatLogfmt:
		logger = log.NewLogfmtLogger(writer)
	case FormatJSON:
		logger = log.NewJSONLogger(writer)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	// the level filter goes last
	return level.NewFilter(logger, option), nil
}

func levelOption(lvl string) (level.Option, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	case "none":
		return level.AllowNone(), nil
	}
	return nil, fmt.Errorf("logging: unknown level %q", lvl)
}
