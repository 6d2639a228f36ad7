package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/noteerrors"

	"github.com/spf13/cobra"
)

// LockOptions holds the `lock` command's configuration.
type LockOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions
}

var _ genericclioptions.CmdOptions = &LockOptions{}

func NewLockOptions(global *GlobalOptions) *LockOptions {
	return &LockOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *LockOptions) Complete() error { return nil }

func (*LockOptions) Validate() error { return nil }

// Run wipes the derived key and mnemonic from memory, transitioning the
// vault to locked. The saved session (if any) is left untouched; use
// `logout --clear-session` to also revoke auto-unlock.
func (o *LockOptions) Run(_ context.Context) error {
	v := o.global.Vault()
	if v == nil {
		return noteerrors.ErrVaultLocked
	}

	v.Lock()
	o.Printf("Vault locked.\n")

	return nil
}

// NewCmdLock creates the cobra `lock` command.
func NewCmdLock(global *GlobalOptions) *cobra.Command {
	o := NewLockOptions(global)

	return &cobra.Command{
		Use:   "lock",
		Short: "Lock the vault, wiping the derived key from memory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}
}
