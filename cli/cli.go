// Package cli wires the notevault command tree together: vault lifecycle
// (create/unlock/lock/destroy), session persistence (remember/auto-unlock/
// logout), format migration, and encrypted backup/restore, following the
// teacher's Options-struct-per-command, cobra-based command tree.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/dwirx/notevault/clierror"
	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/session"
	"github.com/dwirx/notevault/store"
	"github.com/dwirx/notevault/storesqlite"
	"github.com/dwirx/notevault/vault"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags; left as a literal default
// here since this expansion carries no release pipeline.
var Version = "dev"

var (
	// preRunSkipCommands bypass the persistent pre-run entirely (they
	// manage their own configuration resolution or need no storage).
	preRunSkipCommands = []string{"config"}

	// postRunSkipCommands bypass the persistent post-run vault/storage
	// teardown because they never open either.
	postRunSkipCommands = []string{"config"}
)

// GlobalOptions is shared across every subcommand: resolved configuration,
// the open storage handle, and the vault handle once unlocked (by Create,
// Unlock, or a successful session auto-unlock).
type GlobalOptions struct {
	*genericclioptions.StdioOptions

	configOptions *ConfigOptions

	vaultPath  string
	configPath string

	storage store.Storage
	v       *vault.Vault
}

var _ genericclioptions.CmdOptions = &GlobalOptions{}

// NewGlobalOptions initializes the options struct.
func NewGlobalOptions(iostreams *genericclioptions.IOStreams) *GlobalOptions {
	return &GlobalOptions{
		StdioOptions:  &genericclioptions.StdioOptions{IOStreams: iostreams},
		configOptions: &ConfigOptions{},
	}
}

func (o *GlobalOptions) Complete() error {
	if err := o.StdioOptions.Complete(); err != nil {
		return err
	}

	o.configOptions = NewConfigOptions(o.StdioOptions)
	o.configOptions.cliFlags.configPath = o.configPath
	o.configOptions.cliFlags.vaultPath = o.vaultPath

	return o.configOptions.Complete()
}

func (o *GlobalOptions) Validate() error {
	return o.StdioOptions.Validate()
}

// Run opens storage at the resolved vault path and, if a saved session is
// present and valid, auto-unlocks the vault. A failed auto-unlock is not
// fatal here: individual commands decide whether they require an unlocked
// vault.
func (o *GlobalOptions) Run(ctx context.Context) error {
	s, err := storesqlite.New(o.configOptions.Resolved().VaultPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	o.storage = s

	v, err := session.AutoUnlock(ctx, s)
	if err == nil {
		o.v = v
	}

	return nil
}

// Storage returns the open storage handle, valid after Run.
func (o *GlobalOptions) Storage() store.Storage { return o.storage }

// Vault returns the current vault handle, nil if not unlocked.
func (o *GlobalOptions) Vault() *vault.Vault { return o.v }

// SetVault installs v as the current vault handle, called by create/unlock.
func (o *GlobalOptions) SetVault(v *vault.Vault) { o.v = v }

func (o *GlobalOptions) closeAll() error {
	if o.v != nil {
		o.v.Lock()
	}

	if closer, ok := o.storage.(interface{ Close() error }); ok && closer != nil {
		return closer.Close()
	}

	return nil
}

// NewDefaultNotevaultCommand creates the root `notevault` command with its
// full subcommand tree.
func NewDefaultNotevaultCommand(iostreams *genericclioptions.IOStreams, args []string) *cobra.Command {
	o := NewGlobalOptions(iostreams)

	cmd := &cobra.Command{
		Use:   "notevault",
		Short: "Encrypted note vault unlocked by a BIP-39 recovery phrase",
		Long: `notevault is a command-line encrypted note store keyed by a BIP-39
recovery phrase rather than a password: the phrase is the only secret a
user must remember, and it alone derives the key that protects every note.

Environment Variables:
    NOTEVAULT_CONFIG_PATH: overrides the default config path: "~/.notevault.toml".`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if slices.Contains(preRunSkipCommands, cmd.Name()) {
				return
			}

			clierror.Check(genericclioptions.ExecuteCommand(cmd.Context(), o))
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if slices.Contains(postRunSkipCommands, cmd.Name()) {
				return
			}

			clierror.Check(o.closeAll())
		},
	}

	cmd.SetArgs(args)

	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&o.vaultPath, "file", "f", "",
		fmt.Sprintf("database file path (default: ~/%s)", defaultDatabaseFilename))
	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "", "",
		fmt.Sprintf("configuration file path (default: ~/%s)", defaultConfigName))

	cmd.AddCommand(NewCmdConfig(o))
	cmd.AddCommand(newVersionCommand(o))

	cmd.AddCommand(NewCmdCreate(o))
	cmd.AddCommand(NewCmdUnlock(o))
	cmd.AddCommand(NewCmdLock(o))
	cmd.AddCommand(NewCmdDestroy(o))
	cmd.AddCommand(NewCmdRemember(o))
	cmd.AddCommand(NewCmdAutoUnlock(o))
	cmd.AddCommand(NewCmdLogout(o))
	cmd.AddCommand(NewCmdMigrate(o))
	cmd.AddCommand(NewCmdBackup(o))
	cmd.AddCommand(NewCmdRestore(o))

	return cmd
}
