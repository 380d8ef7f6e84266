package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nakachan-ing/daytask/internal/model"
	"gopkg.in/yaml.v3"
)

func GetConfigPath() (string, error) {
	if customConfig := os.Getenv("DAYTASK_CONFIG"); customConfig != "" {
		return customConfig, nil
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "daytask", "config.yaml"), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "daytask", "config.yaml"), nil

	default: // macOS / Linux
		configDir, err := os.UserConfigDir()
		if err != nil {
			homeDir, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return "", fmt.Errorf("failed to determine home directory: %w", homeErr)
			}
			return filepath.Join(homeDir, ".daytask", "config.yaml"), nil
		}
		return filepath.Join(configDir, "daytask", "config.yaml"), nil
	}
}

// Expand `~` to the home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// LoadConfig reads the config file. A missing file yields the defaults;
// fields absent from the file keep their default values.
func LoadConfig() (*model.Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFile(configPath)
}

func LoadConfigFile(configPath string) (*model.Config, error) {
	config := model.DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		config.DataDir = expandHomeDir(config.DataDir)
		return &config, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file (%s): %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.DataDir = expandHomeDir(config.DataDir)
	config.Log.Filename = expandHomeDir(config.Log.Filename)

	return &config, nil
}

// SaveConfig writes config to the config path, creating its directory.
func SaveConfig(config model.Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigFile(configPath, config)
}

func SaveConfigFile(configPath string, config model.Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to generate config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
