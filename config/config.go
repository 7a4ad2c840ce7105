// Package config loads DocFlow configuration from TOML files and
// DOCFLOW_-prefixed environment variables via Viper.
package config

import "time"

// Config represents the core DocFlow configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
}

// ServerConfig configures the DocFlow HTTP server
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig configures the SQLite database holding finalized
// contracts and parties. Job state is never persisted here: a process
// restart loses all in-flight and recent job records by design.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// JobsConfig configures the in-memory extraction job system
type JobsConfig struct {
	Workers          int   `mapstructure:"workers"`           // Concurrent extraction workers
	MaxTracked       int   `mapstructure:"max_tracked"`       // Admission ceiling for tracked jobs
	RetentionMinutes int   `mapstructure:"retention_minutes"` // How long terminal records stay readable
	TimeoutMinutes   int   `mapstructure:"timeout_minutes"`   // Per-job processing deadline
	MaxUploadBytes   int64 `mapstructure:"max_upload_bytes"`  // Document size ceiling at submission
}

// Retention returns the terminal-record retention window as a duration
func (c JobsConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

// Timeout returns the per-job processing deadline as a duration
func (c JobsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// ExtractionConfig configures the OCR extraction engine
type ExtractionConfig struct {
	TesseractPath string `mapstructure:"tesseract_path"` // Empty = look up "tesseract" on PATH
	Languages     string `mapstructure:"languages"`      // Tesseract -l argument, e.g. "rus+eng"
}

// Default ports and limits
const (
	DefaultServerPort = 8420
)
