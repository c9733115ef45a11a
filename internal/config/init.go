package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/twig/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	// globalConfigFileName is the configuration file name inside the global directory.
	globalConfigFileName = "config.yaml"

	defaultConfigurationTemplate = `format: raw
summary: true
sort_by: name
reverse: false
show_hidden: false
follow_links: false
show_size: false
show_permissions: false
full_path: false
clipboard: false
paths:
  exclude: []
  use_gitignore: false
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// InitializeConfiguration writes the default configuration to the requested target.
// It returns the destination path of the written file.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for configuration: %w", err)
		}
		globalDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if makeDirErr := os.MkdirAll(globalDirectory, 0o755); makeDirErr != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", globalDirectory, makeDirErr)
		}
		destinationPath = filepath.Join(globalDirectory, globalConfigFileName)
	default:
		return "", fmt.Errorf("unsupported configuration target %q", target)
	}

	if !options.Force {
		if _, statErr := os.Stat(destinationPath); statErr == nil {
			return "", fmt.Errorf("configuration %s already exists; use --force to overwrite", destinationPath)
		} else if !os.IsNotExist(statErr) {
			return "", fmt.Errorf("stat configuration %s: %w", destinationPath, statErr)
		}
	}

	if writeErr := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o644); writeErr != nil {
		return "", fmt.Errorf("write configuration %s: %w", destinationPath, writeErr)
	}
	return destinationPath, nil
}
