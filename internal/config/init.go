package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/treegen/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes .treegen.yaml into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes config.yaml under ~/.treegen.
	InitTargetGlobal InitTarget = "global"

	configurationDirectoryPermissions os.FileMode = 0o755
	configurationFilePermissions      os.FileMode = 0o600

	errorUnsupportedTarget    = "%w %q"
	errorCreateDirectory      = "create configuration directory %s: %w"
	errorConfigurationExists  = "%w at %s"
	errorInspectConfiguration = "inspect configuration path %s: %w"
	errorWriteConfiguration   = "write configuration to %s: %w"

	defaultConfigurationTemplate = `build:
  input: ` + utils.DefaultInputFileName + `
  output: .
  dry_run: false
  format: raw
  permissions:
    directory: "0755"
    file: "0644"
list:
  format: raw
`
)

var (
	// ErrConfigurationExists reports an existing file that Force was not set to replace.
	ErrConfigurationExists = errors.New("configuration file already exists")
	// ErrUnsupportedTarget reports an InitTarget other than local or global.
	ErrUnsupportedTarget = errors.New("unsupported init target")
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default template to the file LoadApplicationConfiguration
// reads for the requested target and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, destinationErr := initDestination(options)
	if destinationErr != nil {
		return "", destinationErr
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(errorConfigurationExists, ErrConfigurationExists, destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf(errorInspectConfiguration, destinationPath, err)
	}

	configurationDirectory := filepath.Dir(destinationPath)
	if err := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); err != nil {
		return "", fmt.Errorf(errorCreateDirectory, configurationDirectory, err)
	}
	if err := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), configurationFilePermissions); err != nil {
		return "", fmt.Errorf(errorWriteConfiguration, destinationPath, err)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory, err := resolveWorkingDirectory(options.WorkingDirectory)
		if err != nil {
			return "", err
		}
		return resolveLocalConfigPath(workingDirectory, "")
	case InitTargetGlobal:
		return globalConfigPath()
	default:
		return "", fmt.Errorf(errorUnsupportedTarget, ErrUnsupportedTarget, options.Target)
	}
}
