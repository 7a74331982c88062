package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	AppName        = "hearth"
	ConfigFileName = "configuration.toml"

	// ConfigDirEnv points the hub at an explicit configuration directory.
	ConfigDirEnv = "HEARTH_CONFIG_DIR"
)

func ConfigDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(ConfigDirEnv)); override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("could not resolve %s: %w", ConfigDirEnv, err)
		}
		return abs, nil
	}
	if strings.TrimSpace(xdg.ConfigHome) == "" {
		return "", fmt.Errorf("could not resolve config home directory")
	}
	return filepath.Join(xdg.ConfigHome, AppName), nil
}

func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create config dir: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not secure config dir permissions: %w", err)
	}
	return dir, nil
}
