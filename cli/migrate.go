package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/migrator"
	"github.com/dwirx/notevault/noteerrors"

	"github.com/spf13/cobra"
)

// MigrateOptions holds the `migrate` command's configuration.
type MigrateOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions
}

var _ genericclioptions.CmdOptions = &MigrateOptions{}

func NewMigrateOptions(global *GlobalOptions) *MigrateOptions {
	return &MigrateOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *MigrateOptions) Complete() error { return nil }

func (*MigrateOptions) Validate() error { return nil }

// Run upgrades every legacy v1 note in the vault to the v2 payload format.
// A single corrupt note does not abort the batch; failures are reported by
// id and reason.
func (o *MigrateOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v == nil {
		return noteerrors.ErrVaultLocked
	}

	key, err := v.Key()
	if err != nil {
		return err
	}

	result, err := migrator.MigrateAll(ctx, o.global.Storage(), v.VaultID(), key)
	if err != nil {
		return err
	}

	o.Printf("Migrated %d note(s), %d failed.\n", result.Migrated, result.Failed)

	for _, f := range result.Errors {
		o.Errorf("note %s: %v\n", f.NoteID, f.Reason)
	}

	return nil
}

// NewCmdMigrate creates the cobra `migrate` command.
func NewCmdMigrate(global *GlobalOptions) *cobra.Command {
	o := NewMigrateOptions(global)

	return &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade legacy v1 notes to the current payload format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}
}
