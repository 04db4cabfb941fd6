package globals

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	Logger *slog.Logger

	// Ensure initialization happens only once
	initOnce sync.Once
)

// Initialize sets up the global logger exactly once.
func Initialize(verbose bool) {
	initOnce.Do(func() {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		Logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))

		// Set as default logger
		slog.SetDefault(Logger)
	})
}

// MustBeInitialized panics if globals haven't been initialized
func MustBeInitialized() {
	if Logger == nil {
		panic("globals not initialized - call globals.Initialize() first")
	}
}
