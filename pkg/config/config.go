package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is implemented by every loadable configuration struct.
type Config interface {
	Validate() error
}

// Manager loads configuration from defaults, files and environment, in
// that order of increasing precedence.
type Manager struct {
	k           *koanf.Koanf
	prefix      string
	configPaths []string
}

// Option customizes a Manager
type Option func(*Manager)

// WithPaths replaces the candidate config file paths.
func WithPaths(paths ...string) Option {
	return func(m *Manager) {
		m.configPaths = paths
	}
}

// NewManager creates a manager reading <SERVICE>_* environment variables.
func NewManager(serviceName string, opts ...Option) *Manager {
	m := &Manager{
		k:           koanf.New("."),
		prefix:      strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_")) + "_",
		configPaths: defaultConfigPaths(serviceName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load fills cfg. Fields already set on cfg act as defaults.
func (m *Manager) Load(cfg Config) error {
	if err := m.k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range m.configPaths {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	if err := m.k.Load(env.Provider(m.prefix, ".", m.envKey), nil); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := m.k.UnmarshalWithConf("", cfg, unmarshalConf(cfg)); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// unmarshalConf decodes comma-separated env values into slice fields, so
// CATALOG_CATALOG_SEED__GENRES=Action,Drama yields two genres.
func unmarshalConf(cfg Config) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			WeaklyTypedInput: true,
			Result:           cfg,
		},
	}
}

func (m *Manager) loadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	return m.k.Load(file.Provider(path), parser)
}

// envKey maps CATALOG_DATABASE_HOST to database.host. Double underscores
// keep a literal underscore, so CATALOG_SERVER_HTTP__PORT is server.http_port.
func (m *Manager) envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, m.prefix))
	key = strings.ReplaceAll(key, "__", "\x00")
	key = strings.ReplaceAll(key, "_", ".")
	return strings.ReplaceAll(key, "\x00", "_")
}

func defaultConfigPaths(serviceName string) []string {
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "dev"
	}
	paths := []string{
		"config.yaml",
		"config.json",
		fmt.Sprintf("%s.yaml", serviceName),
		fmt.Sprintf("configs/%s.yaml", serviceName),
		fmt.Sprintf("configs/%s.%s.yaml", serviceName, environment),
	}
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append([]string{configPath}, paths...)
	}
	return paths
}
