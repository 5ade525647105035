package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/LFroesch/canopy/internal/logger"
	"github.com/spf13/viper"
)

const (
	appName  = "canopy"
	fileName = "canopy-config.json"

	envPrefix = "CANOPY"

	defaultDoubleClickMs = 400
	minDoubleClickMs     = 100
	maxDoubleClickMs     = 2000
)

// Config holds all Canopy configuration
type Config struct {
	ShowHidden     bool   `json:"show_hidden" mapstructure:"show_hidden"`
	QuickPreview   bool   `json:"quick_preview" mapstructure:"quick_preview"`
	Editor         string `json:"editor" mapstructure:"editor"`
	DefaultCommand string `json:"default_command" mapstructure:"default_command"` // "<filepath>" is replaced by the selected path
	UseTrash       bool   `json:"use_trash" mapstructure:"use_trash"`
	DoubleClickMs  int    `json:"double_click_ms" mapstructure:"double_click_ms"`
	LogLevel       string `json:"log_level" mapstructure:"log_level"`
}

// DoubleClick returns the double click window as a duration.
func (c *Config) DoubleClick() time.Duration {
	return time.Duration(c.DoubleClickMs) * time.Millisecond
}

func defaults() *Config {
	return &Config{
		DoubleClickMs: defaultDoubleClickMs,
		LogLevel:      "info",
	}
}

// Dir returns $XDG_CONFIG_HOME/canopy, falling back to ~/.config/canopy.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		logger.Error("Failed to get home directory: %v", err)
		// Fallback to current directory
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", appName)
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the config file, applying CANOPY_* environment overrides.
// A missing file is created with the defaults; a broken one is ignored.
func Load() *Config {
	configPath := GetConfigPath()
	def := defaults()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetDefault("show_hidden", def.ShowHidden)
	v.SetDefault("quick_preview", def.QuickPreview)
	v.SetDefault("editor", def.Editor)
	v.SetDefault("default_command", def.DefaultCommand)
	v.SetDefault("use_trash", def.UseTrash)
	v.SetDefault("double_click_ms", def.DoubleClickMs)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.BindEnv("default_command", "CANOPY_DEFAULT_CMD", "CANOPY_DEFAULT_COMMAND")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			if err := Save(def); err != nil {
				logger.Warn("Failed to save default config: %v", err)
			}
		} else {
			logger.Warn("Failed to parse config file %s: %v, using defaults", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		logger.Warn("Failed to decode config %s: %v, using defaults", configPath, err)
		return def
	}

	if config.DoubleClickMs <= 0 {
		config.DoubleClickMs = defaultDoubleClickMs
	} else if config.DoubleClickMs < minDoubleClickMs {
		logger.Warn("DoubleClickMs too low (%d), using minimum of %d", config.DoubleClickMs, minDoubleClickMs)
		config.DoubleClickMs = minDoubleClickMs
	} else if config.DoubleClickMs > maxDoubleClickMs {
		logger.Warn("DoubleClickMs too high (%d), using maximum of %d", config.DoubleClickMs, maxDoubleClickMs)
		config.DoubleClickMs = maxDoubleClickMs
	}

	return config
}

// Save writes config to the config file
func Save(config *Config) error {
	configDir := Dir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.Error("Failed to create config directory %s: %v", configDir, err)
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, fileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		logger.Error("Failed to write config file %s: %v", configPath, err)
		return fmt.Errorf("cannot write config file: %w", err)
	}

	return nil
}
