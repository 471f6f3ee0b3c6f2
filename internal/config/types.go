// Package config provides configuration management for QueryLens.
// Values are layered: defaults, then querylens.yaml, then QUERYLENS_*
// environment variables, then CLI flags.
package config

import "time"

// Config holds all runtime configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Query   QueryConfig   `koanf:"query"`
	Load    LoadConfig    `koanf:"load"`
	View    ViewConfig    `koanf:"view"`
	Assist  AssistConfig  `koanf:"assist"`
	History HistoryConfig `koanf:"history"`
	Log     LogConfig     `koanf:"log"`
}

// ServerConfig configures the web API server.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Watch         bool   `koanf:"watch"`
}

// QueryConfig configures query execution bounds.
type QueryConfig struct {
	TimeoutMs int `koanf:"timeout_ms"`
	MaxRows   int `koanf:"max_rows"`
}

// Timeout returns the execution deadline as a duration.
func (q QueryConfig) Timeout() time.Duration {
	return time.Duration(q.TimeoutMs) * time.Millisecond
}

// LoadConfig configures database loading.
type LoadConfig struct {
	SampleRows int `koanf:"sample_rows"`
}

// ViewConfig configures the table presentation layer.
type ViewConfig struct {
	PageSize int `koanf:"page_size"`
}

// AssistConfig configures the NL-to-SQL collaborator.
type AssistConfig struct {
	Endpoint  string        `koanf:"endpoint"`
	CacheSize int           `koanf:"cache_size"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// HistoryConfig configures query history persistence.
type HistoryConfig struct {
	Path string `koanf:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `koanf:"level"`
}
