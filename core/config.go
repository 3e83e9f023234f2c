package core

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the process-wide settings. It is read once at startup and
// treated as read-only afterwards; every request shares the same values.
type Config struct {
	// Environment is one of dev, prod or test.
	Environment string

	// Salt feeds the hash and pseudonym strategies so their outputs are
	// deterministic per deployment but not predictable without it.
	Salt string

	// MaxSampleRows caps how many rows previews and content inspection
	// read from an uploaded file.
	MaxSampleRows int

	// MaxFileMB is the upload size limit in megabytes.
	MaxFileMB int

	// AllowedExtensions is the set of accepted file extensions, without
	// the leading dot.
	AllowedExtensions map[string]bool

	// DataDir receives uploaded source files; OutputsDir receives
	// anonymized outputs and their reports.
	DataDir    string
	OutputsDir string
}

// LoadConfig reads the configuration from the environment, applying
// defaults for anything unset. A short salt outside the test environment
// is logged as a warning but does not fail startup.
func LoadConfig() Config {
	cfg := Config{
		Environment:   getEnv("APP_ENV", "dev"),
		Salt:          getEnv("APP_SALT", "pepper"),
		MaxSampleRows: getEnvInt("MAX_SAMPLE_ROWS", 500),
		MaxFileMB:     getEnvInt("MAX_FILE_MB", 50),
		AllowedExtensions: toSet([]string{
			"csv", "tsv", "txt", "xlsx", "xlsm", "xls", "parquet", "jsonl", "json",
		}),
		DataDir:    getEnv("DATA_DIR", "data"),
		OutputsDir: getEnv("OUTPUTS_DIR", "outputs"),
	}

	if len(cfg.Salt) < 6 && cfg.Environment != "test" {
		slog.Warn("APP_SALT is very short; use 16+ characters in production")
	}

	return cfg
}

// AllowedFile reports whether the filename's extension is accepted.
func (c Config) AllowedFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return c.AllowedExtensions[ext]
}

// FileSizeOK reports whether the file at path fits within the configured
// size limit. Missing files fail the check.
func (c Config) FileSizeOK(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() <= int64(c.MaxFileMB)*1024*1024
}

// EnsureDirs creates the data and outputs directories if needed.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.OutputsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("Ignoring non-integer environment value", "key", key, "value", val)
		return defaultVal
	}
	return n
}
