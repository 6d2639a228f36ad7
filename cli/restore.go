package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dwirx/notevault/backup"
	"github.com/dwirx/notevault/domain"
	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/migrator"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/notecipher"
	"github.com/dwirx/notevault/store"

	"github.com/spf13/cobra"
)

// RestoreOptions holds the `restore` command's configuration.
type RestoreOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	path    string
	preview bool
}

var _ genericclioptions.CmdOptions = &RestoreOptions{}

func NewRestoreOptions(global *GlobalOptions) *RestoreOptions {
	return &RestoreOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *RestoreOptions) Complete() error { return nil }

func (o *RestoreOptions) Validate() error {
	if len(o.path) == 0 {
		return fmt.Errorf("restore: source file path is required")
	}

	return nil
}

// rescopeToVault re-encrypts every record in data under vaultID, which is
// a no-op per record whose encrypted form already carries that vaultID
// (restoring into the same vault it was exported from), and a genuine
// decrypt/re-encrypt otherwise (restoring into a different vault).
func rescopeToVault(data backup.DomainData, key []byte, vaultID string) (backup.DomainData, error) {
	out := backup.DomainData{
		Notes:     make([]notecipher.EncryptedNoteV2, 0, len(data.Notes)),
		Notebooks: make([]domain.EncryptedNotebook, 0, len(data.Notebooks)),
		Tags:      make([]domain.EncryptedTag, 0, len(data.Tags)),
		Settings:  make([]domain.EncryptedSetting, 0, len(data.Settings)),
	}

	for _, enc := range data.Notes {
		if enc.VaultID == vaultID {
			out.Notes = append(out.Notes, enc)
			continue
		}

		note, err := notecipher.DecryptNoteV2(enc, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: decrypt note %s: %w", enc.ID, err)
		}

		note.VaultID = vaultID

		reenc, err := notecipher.EncryptNoteV2(note, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: re-encrypt note %s: %w", enc.ID, err)
		}

		out.Notes = append(out.Notes, reenc)
	}

	for _, enc := range data.Notebooks {
		if enc.VaultID == vaultID {
			out.Notebooks = append(out.Notebooks, enc)
			continue
		}

		nb, err := domain.DecryptNotebook(enc, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: decrypt notebook %s: %w", enc.ID, err)
		}

		nb.VaultID = vaultID

		reenc, err := domain.EncryptNotebook(nb, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: re-encrypt notebook %s: %w", enc.ID, err)
		}

		out.Notebooks = append(out.Notebooks, reenc)
	}

	for _, enc := range data.Tags {
		if enc.VaultID == vaultID {
			out.Tags = append(out.Tags, enc)
			continue
		}

		t, err := domain.DecryptTag(enc, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: decrypt tag %s: %w", enc.ID, err)
		}

		t.VaultID = vaultID

		reenc, err := domain.EncryptTag(t, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: re-encrypt tag %s: %w", enc.ID, err)
		}

		out.Tags = append(out.Tags, reenc)
	}

	for _, enc := range data.Settings {
		if enc.VaultID == vaultID {
			out.Settings = append(out.Settings, enc)
			continue
		}

		s, err := domain.DecryptSetting(enc, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: decrypt setting %s: %w", enc.Key, err)
		}

		s.VaultID = vaultID

		reenc, err := domain.EncryptSetting(s, key)
		if err != nil {
			return backup.DomainData{}, fmt.Errorf("restore: re-encrypt setting %s: %w", enc.Key, err)
		}

		out.Settings = append(out.Settings, reenc)
	}

	return out, nil
}

// Run parses the backup file at o.path and either previews its contents
// (--preview, read-only) or restores it into the current vault, re-scoping
// every record to the current vault-id.
func (o *RestoreOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v == nil {
		return noteerrors.ErrVaultLocked
	}

	blob, err := os.ReadFile(o.path)
	if err != nil {
		return fmt.Errorf("restore: read %s: %w", o.path, err)
	}

	env, err := backup.ParseBackupEnvelope(blob)
	if err != nil {
		return err
	}

	key, err := v.Key()
	if err != nil {
		return err
	}

	if o.preview {
		summary := backup.PreviewBackup(env, key)
		if summary == nil {
			return noteerrors.ErrAuthFailed
		}

		o.Printf("Backup %s: %d note(s), %d notebook(s), %d tag(s), exported %s.\n",
			summary.VaultID, summary.NoteCount, summary.NotebookCount, summary.TagCount, summary.ExportDate)

		return nil
	}

	data, err := backup.RestoreBackup(env, key)
	if err != nil {
		return err
	}

	data, err = rescopeToVault(data, key, v.VaultID())
	if err != nil {
		return err
	}

	if err := writeDomainData(ctx, o.global.Storage(), v.VaultID(), data); err != nil {
		return err
	}

	o.Printf("Restored %d note(s), %d notebook(s), %d tag(s), %d setting(s) from %s.\n",
		len(data.Notes), len(data.Notebooks), len(data.Tags), len(data.Settings), o.path)

	return nil
}

func writeDomainData(ctx context.Context, storage store.Storage, vaultID string, data backup.DomainData) error {
	for _, n := range data.Notes {
		blob, err := migrator.EncodeV2(n)
		if err != nil {
			return fmt.Errorf("restore: encode note %s: %w", n.ID, err)
		}

		if err := storage.Put(ctx, store.KindNote, vaultID, n.ID, blob); err != nil {
			return fmt.Errorf("restore: persist note %s: %w", n.ID, err)
		}
	}

	for _, nb := range data.Notebooks {
		blob, err := json.Marshal(nb)
		if err != nil {
			return fmt.Errorf("restore: encode notebook %s: %w", nb.ID, err)
		}

		if err := storage.Put(ctx, store.KindNotebook, vaultID, nb.ID, blob); err != nil {
			return fmt.Errorf("restore: persist notebook %s: %w", nb.ID, err)
		}
	}

	for _, t := range data.Tags {
		blob, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("restore: encode tag %s: %w", t.ID, err)
		}

		if err := storage.Put(ctx, store.KindTag, vaultID, t.ID, blob); err != nil {
			return fmt.Errorf("restore: persist tag %s: %w", t.ID, err)
		}
	}

	for _, s := range data.Settings {
		blob, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("restore: encode setting %s: %w", s.Key, err)
		}

		if err := storage.Put(ctx, store.KindSettings, vaultID, s.Key, blob); err != nil {
			return fmt.Errorf("restore: persist setting %s: %w", s.Key, err)
		}
	}

	return nil
}

// NewCmdRestore creates the cobra `restore <path>` command.
func NewCmdRestore(global *GlobalOptions) *cobra.Command {
	o := NewRestoreOptions(global)

	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore notes, notebooks, tags, and settings from an encrypted backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.path = args[0]
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	cmd.Flags().BoolVar(&o.preview, "preview", false, "show a summary without writing any data")

	return cmd
}
