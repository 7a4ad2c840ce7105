package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})

	// Database defaults
	v.SetDefault("database.path", "docflow.db")

	// Jobs (extraction job system) defaults
	v.SetDefault("jobs.workers", 2)
	v.SetDefault("jobs.max_tracked", 256)
	v.SetDefault("jobs.retention_minutes", 10)
	v.SetDefault("jobs.timeout_minutes", 5)
	v.SetDefault("jobs.max_upload_bytes", 20<<20) // 20 MiB

	// Extraction engine defaults
	v.SetDefault("extraction.tesseract_path", "")
	v.SetDefault("extraction.languages", "rus+eng")
}

// BindSensitiveEnvVars explicitly binds configuration that commonly comes
// from the environment in deployments
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", "DOCFLOW_DATABASE_PATH")
	v.BindEnv("extraction.tesseract_path", "DOCFLOW_TESSERACT_PATH")
}
