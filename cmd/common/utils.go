package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ducminhle1904/mc-portfolio/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Header prints a formatted header
func Header(w io.Writer, title string) {
	fmt.Fprintf(w, "\n🎯 %s\n", strings.ToUpper(title))
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", len(title)+5))
}

// Section prints a formatted section header
func Section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n📋 %s\n", title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(title)+5))
}

// LoadEnvFile loads environment variables from path. A missing file is not
// an error; variables already set win over the file.
func LoadEnvFile(path string, log zerolog.Logger) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Debug().Str("path", path).Msg("environment file not found, using system environment")
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("could not load environment file %s: %w", path, err)
	}

	log.Debug().Str("path", path).Msg("environment loaded")
	return nil
}

// NewLogger builds the process logger from the common flags
func NewLogger(name string, flags *CommonFlags) (*logger.Logger, error) {
	return logger.New(logger.Options{
		Level:  *flags.LogLevel,
		Name:   name,
		LogDir: *flags.LogDir,
		JSON:   *flags.JSONLogs,
		Output: os.Stderr,
	})
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
