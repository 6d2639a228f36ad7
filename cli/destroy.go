package cli

import (
	"context"
	"strings"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/input"
	"github.com/dwirx/notevault/noteerrors"

	"github.com/spf13/cobra"
)

// DestroyOptions holds the `destroy` command's configuration.
type DestroyOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	force bool
}

var _ genericclioptions.CmdOptions = &DestroyOptions{}

func NewDestroyOptions(global *GlobalOptions) *DestroyOptions {
	return &DestroyOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *DestroyOptions) Complete() error { return nil }

func (*DestroyOptions) Validate() error { return nil }

// Run permanently purges vault metadata, every record, and any saved
// session scoped to the vault, after an interactive confirmation unless
// --force was given or input is non-interactive.
func (o *DestroyOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v == nil {
		return noteerrors.ErrVaultLocked
	}

	if !o.force && !o.NonInteractive {
		answer, err := input.PromptRead(o.Out, o.In, "This permanently deletes the vault and all its notes. Type \"yes\" to confirm: ")
		if err != nil {
			return err
		}

		if strings.TrimSpace(answer) != "yes" {
			o.Printf("Aborted.\n")
			return nil
		}
	}

	if err := v.Destroy(ctx); err != nil {
		return err
	}

	o.Printf("Vault destroyed.\n")

	return nil
}

// NewCmdDestroy creates the cobra `destroy` command.
func NewCmdDestroy(global *GlobalOptions) *cobra.Command {
	o := NewDestroyOptions(global)

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Permanently delete the vault and all its notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVar(&o.force, "force", false, "skip the confirmation prompt")

	return cmd
}
