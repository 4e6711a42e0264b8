package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	// EnvLogLevel is the environment variable for the log level.
	EnvLogLevel = `LOG_LEVEL`

	// EnvLogFormat is the environment variable for the log format. Either "json" or "text".
	EnvLogFormat = `LOG_FORMAT`
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Name is the name of the application the logger is for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// Name is the application name added to every record.
	Name Name

	// Level is the minimum level that is written.
	Level slog.Level

	// Format is either FormatJSON or FormatText.
	Format string

	// Writer is where records are written. Defaults to stdout.
	Writer io.Writer
}

// NewConfig creates a logger configuration from the environment.
func NewConfig(name Name) *Config {
	return &Config{
		Name:   name,
		Level:  parseLevel(os.Getenv(EnvLogLevel)),
		Format: parseFormat(os.Getenv(EnvLogFormat)),
		Writer: os.Stdout,
	}
}

// CommonLogger creates the logger that the application uses and sets it as the default logger.
func CommonLogger(cfg *Config) (*slog.Logger, error) {
	if cfg == nil {
		return nil, errors.New("logging config is nil")
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	var h slog.Handler
	switch cfg.Format {
	case FormatText:
		h = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == KeyError && a.Value.Kind() == slog.KindAny {
					if err, ok := a.Value.Any().(error); ok {
						return tint.Err(err)
					}
				}
				return a
			},
		})
	case FormatJSON, "":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.Level == slog.LevelDebug,
		})
	default:
		return nil, errors.New("unknown log format: " + cfg.Format)
	}

	l := slog.New(h).With(slog.String(KeyApp, string(cfg.Name)))
	slog.SetDefault(l)
	return l, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseFormat(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatText:
		return FormatText
	default:
		return FormatJSON
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
