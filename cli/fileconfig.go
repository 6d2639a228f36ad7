package cli

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// envConfigPathKey is the environment variable key for overriding
	// the config file path.
	envConfigPathKey = "NOTEVAULT_CONFIG_PATH"

	defaultConfigName = ".notevault.toml"

	defaultSessionDuration = "168h" // 7 days
)

type ConfigError struct {
	Opt string
	Err error
}

func (e *ConfigError) Error() string {
	return "config: " + strings.Join([]string{e.Opt, e.Err.Error()}, ":")
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileConfig represents the full structure of the configuration file.
//
//nolint:tagalign
type FileConfig struct {
	Vault VaultConfig `toml:"vault" json:"vault"`

	path string // path to the loaded config file. Empty if no config file was used.
}

func newFileConfig() *FileConfig {
	return &FileConfig{}
}

// VaultConfig holds vault-related configuration.
//
//nolint:tagalign,tagliatelle
type VaultConfig struct {
	Path            string `toml:"path,commented" comment:"notevault database path (default: '~/.notevault.db' if not set)" json:"path,omitempty"`
	SessionDuration string `toml:"session_duration,commented" comment:"saved-session lifetime shown by 'config' (default: '168h'; 'indefinite' disables expiry); 'remember' takes its lifetime from its own --duration flag, not from this value" json:"session_duration,omitempty"`
}

// LoadFileConfig loads the config from the given or default path.
func LoadFileConfig(path string) (*FileConfig, error) {
	defaultPath, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}

	configPath := cmp.Or(path, defaultPath)

	c, err := parseFileConfig(configPath)
	if err != nil {
		// config file not found at default location; fallback to empty config
		if len(path) == 0 && errors.Is(err, fs.ErrNotExist) { //nolint:revive // clearer with explicit fallback logic
			c = newFileConfig()
		} else {
			return nil, err
		}
	} else {
		c.path = configPath
	}

	return c, c.validate()
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: user home dir: %w", err)
	}

	path := filepath.Join(home, defaultConfigName)
	if p, ok := os.LookupEnv(envConfigPathKey); ok {
		path = p
	}

	return path, nil
}

func parseFileConfig(path string) (*FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: stat file: %w", err)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	config := newFileConfig()
	if err := toml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	return config, nil
}

func (c *FileConfig) validate() error {
	if c == nil {
		return &ConfigError{Err: errors.New("cannot validate a nil config")}
	}

	return nil
}
