package cli

import (
	"context"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/session"

	"github.com/spf13/cobra"
)

// LogoutOptions holds the `logout` command's configuration.
type LogoutOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	clearSession bool
}

var _ genericclioptions.CmdOptions = &LogoutOptions{}

func NewLogoutOptions(global *GlobalOptions) *LogoutOptions {
	return &LogoutOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *LogoutOptions) Complete() error { return nil }

func (*LogoutOptions) Validate() error { return nil }

// Run locks the vault and, with --clear-session, also revokes any saved
// session so the next launch requires the recovery phrase again.
func (o *LogoutOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v != nil {
		if err := session.Logout(ctx, o.global.Storage(), v, o.clearSession); err != nil {
			return err
		}
	} else if o.clearSession {
		if err := session.ClearSessionToken(ctx, o.global.Storage()); err != nil {
			return err
		}
	} else {
		return noteerrors.ErrVaultLocked
	}

	if o.clearSession {
		o.Printf("Logged out; saved session cleared.\n")
	} else {
		o.Printf("Logged out; saved session (if any) preserved for auto-unlock.\n")
	}

	return nil
}

// NewCmdLogout creates the cobra `logout` command.
func NewCmdLogout(global *GlobalOptions) *cobra.Command {
	o := NewLogoutOptions(global)

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Lock the vault and optionally revoke the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVar(&o.clearSession, "clear-session", false, "also delete the saved auto-unlock session")

	return cmd
}
