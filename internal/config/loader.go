package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "querylens.yaml"
	ConfigFileNameAlt = "querylens.yml"
)

const envPrefix = "QUERYLENS_"

// defaults is the lowest-priority configuration layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":           8765,
		"server.session_secret": "",
		"server.watch":          true,
		"query.timeout_ms":      10000,
		"query.max_rows":        1000,
		"load.sample_rows":      3,
		"view.page_size":        10,
		"assist.endpoint":       "",
		"assist.cache_size":     50,
		"assist.cache_ttl":      "24h",
		"history.path":          ".querylens/history.db",
		"log.level":             "info",
	}
}

// findConfigFile returns the config file to use.
// Priority: explicit path > querylens.yaml > querylens.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load layers configuration from defaults, the config file, environment
// variables and explicitly set CLI flags, in ascending priority.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// QUERYLENS_QUERY_TIMEOUT_MS -> query.timeout_ms. A single-level key
	// like server.session_secret maps from QUERYLENS_SERVER_SESSION_SECRET
	// because only the first underscore separates the section.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// --timeout-ms maps to query.timeout_ms via the flag's declared key.
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"port":            "server.port",
	"watch":           "server.watch",
	"timeout-ms":      "query.timeout_ms",
	"max-rows":        "query.max_rows",
	"sample-rows":     "load.sample_rows",
	"page-size":       "view.page_size",
	"assist-endpoint": "assist.endpoint",
	"history":         "history.path",
	"log-level":       "log.level",
}

// NewLogger builds the process logger from the configured level.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
