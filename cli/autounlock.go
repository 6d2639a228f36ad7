package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/session"

	"github.com/spf13/cobra"
)

// AutoUnlockOptions holds the `auto-unlock` command's configuration.
type AutoUnlockOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions
}

var _ genericclioptions.CmdOptions = &AutoUnlockOptions{}

func NewAutoUnlockOptions(global *GlobalOptions) *AutoUnlockOptions {
	return &AutoUnlockOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *AutoUnlockOptions) Complete() error { return nil }

func (*AutoUnlockOptions) Validate() error { return nil }

// Run attempts to unlock the vault from a previously saved session,
// surfacing the specific reason (no session, expired, vault mismatch) on
// failure rather than the silent best-effort attempt every other command
// makes on startup.
func (o *AutoUnlockOptions) Run(ctx context.Context) error {
	v, err := session.AutoUnlock(ctx, o.global.Storage())
	if err != nil {
		return err
	}

	o.global.SetVault(v)
	o.Printf("Vault auto-unlocked from saved session.\n")

	return nil
}

// NewCmdAutoUnlock creates the cobra `auto-unlock` command.
func NewCmdAutoUnlock(global *GlobalOptions) *cobra.Command {
	o := NewAutoUnlockOptions(global)

	return &cobra.Command{
		Use:   "auto-unlock",
		Short: "Unlock the vault from a previously saved session, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}
}
