package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dwirx/notevault/backup"
	"github.com/dwirx/notevault/domain"
	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/migrator"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/store"

	"github.com/spf13/cobra"
)

// BackupOptions holds the `backup` command's configuration.
type BackupOptions struct {
	*genericclioptions.StdioOptions

	global *GlobalOptions

	path string
}

var _ genericclioptions.CmdOptions = &BackupOptions{}

func NewBackupOptions(global *GlobalOptions) *BackupOptions {
	return &BackupOptions{StdioOptions: global.StdioOptions, global: global}
}

func (o *BackupOptions) Complete() error { return nil }

func (o *BackupOptions) Validate() error {
	if len(o.path) == 0 {
		return fmt.Errorf("backup: destination file path is required")
	}

	return nil
}

// collectDomainData scans every record kind scoped to vaultID and decodes
// it into its typed encrypted-at-rest form. A note still in the legacy v1
// format is skipped; callers should run `migrate` first.
func collectDomainData(ctx context.Context, storage store.Storage, vaultID string) (backup.DomainData, error) {
	var data backup.DomainData

	noteBlobs, err := storage.Scan(ctx, store.KindNote, vaultID)
	if err != nil {
		return backup.DomainData{}, fmt.Errorf("backup: scan notes: %w", err)
	}

	for _, blob := range noteBlobs {
		note, err := migrator.DecodeV2(blob)
		if err != nil {
			continue // still v1; excluded until migrated
		}

		data.Notes = append(data.Notes, note)
	}

	notebookBlobs, err := storage.Scan(ctx, store.KindNotebook, vaultID)
	if err != nil {
		return backup.DomainData{}, fmt.Errorf("backup: scan notebooks: %w", err)
	}

	for _, blob := range notebookBlobs {
		var nb domain.EncryptedNotebook
		if err := json.Unmarshal(blob, &nb); err != nil {
			return backup.DomainData{}, fmt.Errorf("backup: unmarshal notebook: %w", err)
		}

		data.Notebooks = append(data.Notebooks, nb)
	}

	tagBlobs, err := storage.Scan(ctx, store.KindTag, vaultID)
	if err != nil {
		return backup.DomainData{}, fmt.Errorf("backup: scan tags: %w", err)
	}

	for _, blob := range tagBlobs {
		var t domain.EncryptedTag
		if err := json.Unmarshal(blob, &t); err != nil {
			return backup.DomainData{}, fmt.Errorf("backup: unmarshal tag: %w", err)
		}

		data.Tags = append(data.Tags, t)
	}

	settingBlobs, err := storage.Scan(ctx, store.KindSettings, vaultID)
	if err != nil {
		return backup.DomainData{}, fmt.Errorf("backup: scan settings: %w", err)
	}

	for _, blob := range settingBlobs {
		var s domain.EncryptedSetting
		if err := json.Unmarshal(blob, &s); err != nil {
			return backup.DomainData{}, fmt.Errorf("backup: unmarshal setting: %w", err)
		}

		data.Settings = append(data.Settings, s)
	}

	return data, nil
}

// Run exports every note, notebook, tag, and setting in the current vault
// into a single encrypted envelope at o.path.
func (o *BackupOptions) Run(ctx context.Context) error {
	v := o.global.Vault()
	if v == nil {
		return noteerrors.ErrVaultLocked
	}

	key, err := v.Key()
	if err != nil {
		return err
	}

	data, err := collectDomainData(ctx, o.global.Storage(), v.VaultID())
	if err != nil {
		return err
	}

	env, err := backup.CreateBackup(data, key, v.VaultID(), v.KDFParams())
	if err != nil {
		return err
	}

	blob, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: marshal envelope: %w", err)
	}

	if err := os.WriteFile(o.path, blob, 0o600); err != nil {
		return fmt.Errorf("backup: write %s: %w", o.path, err)
	}

	o.Printf("Backup written to %s (%d note(s), %d notebook(s), %d tag(s), %d setting(s)).\n",
		o.path, len(data.Notes), len(data.Notebooks), len(data.Tags), len(data.Settings))

	if err := o.global.Storage().PutKV(ctx, store.SlotLastBackupDate, []byte(env.ExportDate.Format(time.RFC3339))); err != nil {
		return fmt.Errorf("backup: record last backup date: %w", err)
	}

	return nil
}

// NewCmdBackup creates the cobra `backup <path>` command.
func NewCmdBackup(global *GlobalOptions) *cobra.Command {
	o := NewBackupOptions(global)

	cmd := &cobra.Command{
		Use:   "backup <path>",
		Short: "Export the vault's notes, notebooks, tags, and settings as an encrypted backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.path = args[0]
			return genericclioptions.ExecuteCommand(cmd.Context(), o)
		},
	}

	return cmd
}
