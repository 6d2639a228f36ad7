package cli

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dwirx/notevault/clierror"
	"github.com/dwirx/notevault/genericclioptions"

	"github.com/spf13/cobra"
)

const defaultDatabaseFilename = ".notevault.db"

// ConfigOptions holds cli, file, and resolved global configuration.
type ConfigOptions struct {
	*genericclioptions.StdioOptions

	fileConfig *FileConfig
	cliFlags   *Flags

	resolved *ResolvedConfig
}

// Flags holds cli overrides for configuration.
type Flags struct {
	configPath string
	vaultPath  string
}

// ResolvedConfig contains the final merged configuration; cli flags take
// precedence over config file values.
//
//nolint:tagliatelle
type ResolvedConfig struct {
	VaultPath       string   `json:"vault_path,omitempty"`
	SessionDuration Duration `json:"session_duration,omitempty"`
	Indefinite      bool     `json:"indefinite_session,omitempty"`
}

type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

var _ genericclioptions.CmdOptions = &ConfigOptions{}

// NewConfigOptions initializes ConfigOptions with default values.
func NewConfigOptions(stdio *genericclioptions.StdioOptions) *ConfigOptions {
	return &ConfigOptions{
		StdioOptions: stdio,
		fileConfig:   newFileConfig(),
		cliFlags:     &Flags{},
		resolved:     &ResolvedConfig{},
	}
}

func (o *ConfigOptions) Resolved() *ResolvedConfig { return o.resolved }

func (o *ConfigOptions) Complete() error {
	c, err := LoadFileConfig(o.cliFlags.configPath)
	if err != nil {
		return err
	}

	o.fileConfig = c

	return o.resolve()
}

func (o *ConfigOptions) resolve() error {
	o.resolved.VaultPath = cmp.Or(o.cliFlags.vaultPath, o.fileConfig.Vault.Path)

	if len(o.resolved.VaultPath) == 0 {
		vaultPath, err := defaultVaultPath()
		if err != nil {
			return err
		}

		o.resolved.VaultPath = vaultPath
	}

	sessionDuration := cmp.Or(o.fileConfig.Vault.SessionDuration, defaultSessionDuration)

	if sessionDuration == "indefinite" {
		o.resolved.Indefinite = true
		return nil
	}

	t, err := time.ParseDuration(sessionDuration)
	if err != nil {
		return fmt.Errorf("invalid session duration: %w", err)
	}

	o.resolved.SessionDuration = Duration(t)

	return nil
}

func defaultVaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, defaultDatabaseFilename), nil
}

func (*ConfigOptions) Validate() error { return nil }

func (*ConfigOptions) Run(context.Context) error { return nil }

// NewCmdConfig creates the cobra config command.
func NewCmdConfig(defaults *GlobalOptions) *cobra.Command {
	o := NewConfigOptions(defaults.StdioOptions)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Resolve and display the active notevault configuration",
		Long: fmt.Sprintf(`Resolve and display the active notevault configuration.

If --config is not provided, the default config path (~/%s) is used.`, defaultConfigName),
		Run: func(cmd *cobra.Command, _ []string) {
			o.cliFlags.vaultPath = defaults.vaultPath
			o.cliFlags.configPath = defaults.configPath

			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o))

			if len(o.fileConfig.path) == 0 {
				o.Infof("no config file found; using default values.\n")
				return
			}

			c := struct {
				Path     string `json:"path"`
				Parsed   any    `json:"parsed_config"`   //nolint:tagliatelle
				Resolved any    `json:"resolved_config"` //nolint:tagliatelle
			}{
				Path:     o.fileConfig.path,
				Parsed:   o.fileConfig,
				Resolved: o.resolved,
			}

			o.Printf("%s", stringifyPretty(c))
		},
	}

	return cmd
}

// stringifyPretty returns the pretty-printed JSON representation of v.
// If marshalling fails, it returns the error message instead.
func stringifyPretty(v any) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)

	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("stringify error: %v", err)
	}

	return buf.String()
}
