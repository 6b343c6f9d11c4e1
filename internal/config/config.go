package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/podcatch/internal/log"
	"github.com/spf13/viper"
)

// DefaultCatalogURL is the public fyyd API
const DefaultCatalogURL = "https://api.fyyd.de/0.2"

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Player  PlayerConfig  `mapstructure:"player"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging log.Config    `mapstructure:"logging"`
}

// CatalogConfig holds remote catalog configuration
type CatalogConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PlayerConfig holds external audio player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // empty = auto-detect
	Args    []string `mapstructure:"args"`
}

// StorageConfig holds local state storage configuration
type StorageConfig struct {
	Dir     string `mapstructure:"dir"`
	Profile string `mapstructure:"profile"` // separates state for several users of one device
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL: DefaultCatalogURL,
			Timeout: 15 * time.Second,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		Storage: StorageConfig{
			Dir:     defaultDataPath(),
			Profile: "",
		},
		Logging: log.Config{
			File:  filepath.Join(defaultDataPath(), "podcatch.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "podcatch")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "podcatch")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "podcatch")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "podcatch")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return Load(viper.GetViper(), DefaultConfigPath(), ".")
}

// Load reads config.yaml from the first of dirs that has one, then applies
// PODCATCH_* environment overrides (e.g. PODCATCH_PLAYER_COMMAND).
func Load(v *viper.Viper, dirs ...string) (*Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("PODCATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.Catalog.BaseURL) == "" {
		cfg.Catalog.BaseURL = DefaultCatalogURL
	}
	cfg.Catalog.BaseURL = strings.TrimRight(cfg.Catalog.BaseURL, "/")

	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalog.base_url", cfg.Catalog.BaseURL)
	v.SetDefault("catalog.timeout", cfg.Catalog.Timeout)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.profile", cfg.Storage.Profile)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig writes cfg to config.yaml in dir, creating it if needed
func SaveConfig(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("catalog.base_url", cfg.Catalog.BaseURL)
	v.Set("catalog.timeout", cfg.Catalog.Timeout.String())
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("storage.dir", cfg.Storage.Dir)
	v.Set("storage.profile", cfg.Storage.Profile)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
