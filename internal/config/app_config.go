// Package config loads treegen defaults from global and local YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/treegen/internal/utils"
)

const (
	octalPrefix = "0o"

	errorWorkingDirectory    = "determine working directory: %w"
	errorHomeDirectory       = "resolve home directory: %w"
	errorResolvePath         = "resolve configuration path %s: %w"
	errorStatConfiguration   = "stat configuration %s: %w"
	errorConfigurationIsDir  = "configuration path %s is a directory"
	errorReadConfiguration   = "read configuration from %s: %w"
	errorDecodeConfiguration = "decode configuration from %s: %w"
	errorInvalidFileMode     = "%w %q: %w"
)

// ErrInvalidFileMode reports a permission value that is not an octal file mode.
var ErrInvalidFileMode = errors.New("invalid permission value")

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Build BuildConfiguration `mapstructure:"build"`
	List  ListConfiguration  `mapstructure:"list"`
}

// BuildConfiguration defines defaults for the build command.
type BuildConfiguration struct {
	Input       string                   `mapstructure:"input"`
	Output      string                   `mapstructure:"output"`
	DryRun      *bool                    `mapstructure:"dry_run"`
	Format      string                   `mapstructure:"format"`
	Permissions PermissionsConfiguration `mapstructure:"permissions"`
}

// PermissionsConfiguration holds octal modes such as "0755" for created items.
type PermissionsConfiguration struct {
	Directory string `mapstructure:"directory"`
	File      string `mapstructure:"file"`
}

// ListConfiguration defines defaults for the list command.
type ListConfiguration struct {
	Format string `mapstructure:"format"`
}

// LoadApplicationConfiguration loads the global file and then the local (or explicit) file on top of it.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory, workingDirectoryErr := resolveWorkingDirectory(options.WorkingDirectory)
	if workingDirectoryErr != nil {
		return ApplicationConfiguration{}, workingDirectoryErr
	}

	var merged ApplicationConfiguration

	if globalPath, err := globalConfigPath(); err == nil {
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	return merged, nil
}

// resolveWorkingDirectory returns workingDirectory, or the process working directory when it is empty.
func resolveWorkingDirectory(workingDirectory string) (string, error) {
	if workingDirectory != "" {
		return workingDirectory, nil
	}
	currentDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf(errorWorkingDirectory, err)
	}
	return currentDirectory, nil
}

// globalConfigPath locates the configuration file under the user's home directory.
func globalConfigPath() (string, error) {
	homeDirectory, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf(errorHomeDirectory, err)
	}
	if homeDirectory == "" {
		return "", fmt.Errorf(errorHomeDirectory, os.ErrNotExist)
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName), nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(errorResolvePath, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfiguration, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigurationIsDir, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfiguration, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfiguration, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Build = result.Build.merge(override.Build)
	result.List = result.List.merge(override.List)
	return result
}

func (config BuildConfiguration) merge(override BuildConfiguration) BuildConfiguration {
	result := config
	if override.Input != "" {
		result.Input = override.Input
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.DryRun != nil {
		result.DryRun = cloneBool(override.DryRun)
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Permissions.Directory != "" {
		result.Permissions.Directory = override.Permissions.Directory
	}
	if override.Permissions.File != "" {
		result.Permissions.File = override.Permissions.File
	}
	return result
}

func (config ListConfiguration) merge(override ListConfiguration) ListConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	return result
}

// ParseFileMode interprets value as an octal mode ("755", "0755" or "0o755").
// An empty value yields fallback.
func ParseFileMode(value string, fallback os.FileMode) (os.FileMode, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	digits := strings.TrimPrefix(strings.ToLower(trimmed), octalPrefix)
	parsed, parseErr := strconv.ParseUint(digits, 8, 32)
	if parseErr != nil || parsed > uint64(os.ModePerm) {
		if parseErr == nil {
			parseErr = strconv.ErrRange
		}
		return 0, fmt.Errorf(errorInvalidFileMode, ErrInvalidFileMode, value, parseErr)
	}
	return os.FileMode(parsed), nil
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
