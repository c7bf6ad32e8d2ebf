package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/xxxsen/modslug/internal/config"
)

const defaultConfigName = "modslug.json"

// LoadConfig resolves the configuration file respecting precedence rules:
// explicit path, working directory, then the user config directory. Without
// any file the defaults are used; an explicit path must exist.
func LoadConfig(explicit string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}

	searchPaths := make([]string, 0, 2)
	if wd, err := os.Getwd(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(wd, defaultConfigName))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(dir, defaultConfigName))
	}

	cfg, err := config.LoadFirst(searchPaths...)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}
