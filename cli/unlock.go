package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/input"
	"github.com/dwirx/notevault/vault"

	"github.com/spf13/cobra"
)

// UnlockOptions holds the `unlock` command's configuration.
type UnlockOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions
}

var _ genericclioptions.CmdOptions = &UnlockOptions{}

func NewUnlockOptions(global *GlobalOptions) *UnlockOptions {
	return &UnlockOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *UnlockOptions) Complete() error { return nil }

func (*UnlockOptions) Validate() error { return nil }

// Run prompts for the recovery phrase (securely, hiding input) and unlocks
// the vault.
func (o *UnlockOptions) Run(ctx context.Context) error {
	phrase, err := input.PromptReadSecure(o.Out, int(o.In.Fd()), "Enter recovery phrase: ")
	if err != nil {
		return err
	}

	v, err := vault.Unlock(ctx, o.global.Storage(), string(phrase))
	if err != nil {
		return err
	}

	o.global.SetVault(v)
	o.Printf("Vault unlocked.\n")

	return nil
}

// NewCmdUnlock creates the cobra `unlock` command.
func NewCmdUnlock(global *GlobalOptions) *cobra.Command {
	o := NewUnlockOptions(global)

	return &cobra.Command{
		Use:   "unlock",
		Short: "Unlock the vault with your recovery phrase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}
}
