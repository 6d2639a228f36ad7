package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/vault"

	"github.com/spf13/cobra"
)

// CreateOptions holds the `create` command's configuration.
type CreateOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	mnemonic string
}

var _ genericclioptions.CmdOptions = &CreateOptions{}

func NewCreateOptions(global *GlobalOptions) *CreateOptions {
	return &CreateOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *CreateOptions) Complete() error { return nil }

func (*CreateOptions) Validate() error { return nil }

// Run creates a new vault. With --mnemonic it imports an existing recovery
// phrase; otherwise a fresh one is generated and printed once, since it is
// never persisted anywhere in plaintext.
func (o *CreateOptions) Run(ctx context.Context) error {
	v, phrase, err := vault.Create(ctx, o.global.Storage(), o.mnemonic)
	if err != nil {
		return err
	}

	o.global.SetVault(v)

	if len(o.mnemonic) == 0 {
		o.Printf("Vault created. Write down your recovery phrase now — it is shown only once:\n\n  %s\n\n", phrase)
		o.Printf("Anyone with this phrase can unlock your vault. Store it offline.\n")
	} else {
		o.Printf("Vault created from the supplied recovery phrase.\n")
	}

	o.Printf("Vault ID: %s\n", v.VaultID())

	return nil
}

// NewCmdCreate creates the cobra `create` command.
func NewCmdCreate(global *GlobalOptions) *cobra.Command {
	o := NewCreateOptions(global)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new vault",
		Long: `Create a new vault.

Without --mnemonic, a fresh BIP-39 recovery phrase is generated and printed
once. With --mnemonic, the supplied phrase is imported instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.mnemonic, "mnemonic", "", "import an existing BIP-39 recovery phrase instead of generating one")

	return cmd
}
