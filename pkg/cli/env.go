package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Fepozopo/imgfuse/pkg/fusion"
)

// Env holds the settings read from the environment (after .env loading).
type Env struct {
	LogLevel    slog.Level
	OptionsFile string
	HTTPTimeout time.Duration
	S3          fusion.S3Config
}

// LoadEnv reads the IMGFUSE_* variables.
func LoadEnv() (Env, error) {
	e := Env{
		LogLevel:    slog.LevelWarn,
		OptionsFile: os.Getenv("IMGFUSE_OPTIONS"),
		HTTPTimeout: fusion.DefaultHTTPTimeout,
		S3:          fusion.S3ConfigFromEnv(),
	}
	if v := os.Getenv("IMGFUSE_LOG_LEVEL"); v != "" {
		lvl, err := parseLevel(v)
		if err != nil {
			return e, err
		}
		e.LogLevel = lvl
	}
	if v := os.Getenv("IMGFUSE_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return e, fmt.Errorf("IMGFUSE_HTTP_TIMEOUT: invalid duration %q", v)
		}
		e.HTTPTimeout = d
	}
	return e, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("IMGFUSE_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
