// Package config loads layered YAML configuration for the indexer commands.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/dirindex/internal/types"
	"github.com/temirov/dirindex/internal/utils"
)

const (
	// DefaultServeAddress is the listen address of the web front-end.
	DefaultServeAddress = "127.0.0.1:8080"
	// DefaultSessionTTL bounds how long generated files stay downloadable.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultProgressInterval is the number of nodes between progress reports.
	DefaultProgressInterval = 100

	errorUnsupportedFormatFormat = "unsupported format %q in configuration; supported formats: %s"
	errorNegativeIntervalFormat  = "progress_every must not be negative, got %d"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	LogLevel string             `mapstructure:"log_level" yaml:"log_level,omitempty"`
	Index    IndexConfiguration `mapstructure:"index" yaml:"index"`
	Serve    ServeConfiguration `mapstructure:"serve" yaml:"serve"`
}

// IndexConfiguration defines defaults for the index command.
type IndexConfiguration struct {
	Formats         []string `mapstructure:"formats" yaml:"formats"`
	OutputDirectory string   `mapstructure:"output_dir" yaml:"output_dir"`
	InPlace         *bool    `mapstructure:"in_place" yaml:"in_place,omitempty"`
	Label           string   `mapstructure:"label" yaml:"label,omitempty"`
	ProgressEvery   *int     `mapstructure:"progress_every" yaml:"progress_every,omitempty"`
	Clipboard       *bool    `mapstructure:"clipboard" yaml:"clipboard,omitempty"`
}

// ServeConfiguration defines defaults for the serve command.
type ServeConfiguration struct {
	Address string `mapstructure:"address" yaml:"address"`
	// OutputDirectory holds the session workspace; empty selects the system temporary directory.
	OutputDirectory string        `mapstructure:"output_dir" yaml:"output_dir"`
	BasePaths       []string      `mapstructure:"base_paths" yaml:"base_paths"`
	SessionTTL      time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// DefaultApplicationConfiguration returns the built-in defaults written by init.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	progressEvery := DefaultProgressInterval
	inPlace := false
	clipboard := false
	return ApplicationConfiguration{
		LogLevel: utils.DefaultLogLevel,
		Index: IndexConfiguration{
			Formats:         types.SupportedFormats(),
			OutputDirectory: ".",
			InPlace:         &inPlace,
			ProgressEvery:   &progressEvery,
			Clipboard:       &clipboard,
		},
		Serve: ServeConfiguration{
			Address:    DefaultServeAddress,
			BasePaths:  []string{"~"},
			SessionTTL: DefaultSessionTTL,
		},
	}
}

// LoadApplicationConfiguration loads the built-in defaults, then the global file
// under the home directory, then the local or explicit file, each overriding the last.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultApplicationConfiguration()

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	if validationErr := merged.Validate(); validationErr != nil {
		return ApplicationConfiguration{}, validationErr
	}
	return merged, nil
}

// Validate reports values no command can act on.
func (config ApplicationConfiguration) Validate() error {
	for _, format := range config.Index.Formats {
		if !types.IsSupportedFormat(format) {
			return fmt.Errorf(errorUnsupportedFormatFormat, format, strings.Join(types.SupportedFormats(), ", "))
		}
	}
	if config.Index.ProgressEvery != nil && *config.Index.ProgressEvery < 0 {
		return fmt.Errorf(errorNegativeIntervalFormat, *config.Index.ProgressEvery)
	}
	return nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	result.Index = result.Index.merge(override.Index)
	result.Serve = result.Serve.merge(override.Serve)
	return result
}

func (config IndexConfiguration) merge(override IndexConfiguration) IndexConfiguration {
	result := config
	if override.Formats != nil {
		normalized := make([]string, 0, len(override.Formats))
		for _, format := range override.Formats {
			normalized = append(normalized, strings.ToLower(strings.TrimSpace(format)))
		}
		result.Formats = utils.DeduplicateStrings(normalized)
	}
	if override.OutputDirectory != "" {
		result.OutputDirectory = override.OutputDirectory
	}
	if override.InPlace != nil {
		result.InPlace = cloneBool(override.InPlace)
	}
	if override.Label != "" {
		result.Label = override.Label
	}
	if override.ProgressEvery != nil {
		result.ProgressEvery = cloneInt(override.ProgressEvery)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config ServeConfiguration) merge(override ServeConfiguration) ServeConfiguration {
	result := config
	if override.Address != "" {
		result.Address = override.Address
	}
	if override.OutputDirectory != "" {
		result.OutputDirectory = override.OutputDirectory
	}
	if len(override.BasePaths) > 0 {
		result.BasePaths = append([]string{}, utils.DeduplicateStrings(override.BasePaths)...)
	}
	if override.SessionTTL > 0 {
		result.SessionTTL = override.SessionTTL
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
