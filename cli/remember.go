package cli

import (
	"context"
	"fmt"

	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/input"
	"github.com/dwirx/notevault/session"
	"github.com/dwirx/notevault/vault"

	"github.com/spf13/cobra"
)

// RememberOptions holds the `remember` command's configuration.
type RememberOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	durationFlag string
	duration     session.Duration
}

var _ genericclioptions.CmdOptions = &RememberOptions{}

func NewRememberOptions(global *GlobalOptions) *RememberOptions {
	return &RememberOptions{StdioOptions: global.StdioOptions, global: global, durationFlag: "7d"}
}

func (o *RememberOptions) Complete() error {
	switch o.durationFlag {
	case "7d":
		o.duration = session.SevenDays
	case "30d":
		o.duration = session.ThirtyDays
	case "indefinite":
		o.duration = session.Indefinite
	default:
		return fmt.Errorf("remember: invalid --duration %q (want 7d, 30d, or indefinite)", o.durationFlag)
	}

	return nil
}

func (*RememberOptions) Validate() error { return nil }

// Run seals the unlocked vault's mnemonic under a fresh session key and
// persists both, enabling a future `auto-unlock` to skip the phrase prompt.
//
// Every CLI invocation is a separate process, so a vault unlocked by a
// prior `unlock` call does not carry over; if this process hasn't already
// unlocked the vault (via a saved session from an earlier `remember`), the
// recovery phrase is prompted for here.
func (o *RememberOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v == nil {
		phrase, err := input.PromptReadSecure(o.Out, int(o.In.Fd()), "Enter recovery phrase: ")
		if err != nil {
			return err
		}

		v, err = vault.Unlock(ctx, o.global.Storage(), string(phrase))
		if err != nil {
			return err
		}

		o.global.SetVault(v)
	}

	if err := session.SaveSessionToken(ctx, o.global.Storage(), v, o.duration); err != nil {
		return err
	}

	if o.duration == session.Indefinite {
		o.Printf("Session saved; this vault will auto-unlock indefinitely until logout.\n")
	} else {
		o.Printf("Session saved; this vault will auto-unlock for the next %s.\n", o.durationFlag)
	}

	return nil
}

// NewCmdRemember creates the cobra `remember` command.
func NewCmdRemember(global *GlobalOptions) *cobra.Command {
	o := NewRememberOptions(global)

	cmd := &cobra.Command{
		Use:   "remember",
		Short: "Save a session so future commands auto-unlock without the recovery phrase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().StringVar(&o.durationFlag, "duration", o.durationFlag, "session lifetime: 7d, 30d, or indefinite")

	return cmd
}
