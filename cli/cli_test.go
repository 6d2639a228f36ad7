package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dwirx/notevault/cli"
	"github.com/dwirx/notevault/clierror"
	"github.com/dwirx/notevault/genericclioptions"
	"github.com/dwirx/notevault/mnemonic"
	"github.com/dwirx/notevault/session"
	"github.com/dwirx/notevault/storesqlite"
	"github.com/dwirx/notevault/vault"
)

func newTTYFileInfo(name string) os.FileInfo {
	return genericclioptions.NewMockFileInfo(name, 0, os.ModeCharDevice, false, time.Time{})
}

// newTestIOStreams returns IOStreams with no piped stdin (so the stdio
// non-interactive detection in Complete does not kick in) and captured
// output buffers.
func newTestIOStreams(t *testing.T) (streams *genericclioptions.IOStreams, out, errOut *bytes.Buffer) {
	t.Helper()

	stdin := genericclioptions.NewTestFdReader(bytes.NewBuffer(nil), 0, newTTYFileInfo("stdin"))
	streams, _, out, errOut = genericclioptions.NewTestIOStreams(stdin)

	clierror.SetErrorHandler(clierror.PrintErrHandler)
	clierror.SetErrWriter(streams.ErrOut)

	t.Cleanup(func() {
		clierror.ResetErrorHandler()
		clierror.ResetErrWriter()
	})

	return
}

func tempVaultPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "vault.db")
}

// setupRememberedVault creates a vault at path directly against the
// storage layer (bypassing the CLI's interactive prompt, same as the
// teacher's test helpers bypass its own login prompt) and saves an
// indefinite session so CLI commands auto-unlock it.
func setupRememberedVault(t *testing.T, path string) string {
	t.Helper()

	ctx := context.Background()

	s, err := storesqlite.New(path)
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer s.Close()

	phrase, err := mnemonic.Generate()
	if err != nil {
		t.Fatalf("generate mnemonic: %v", err)
	}

	v, _, err := vault.Create(ctx, s, phrase)
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}

	if err := session.SaveSessionToken(ctx, s, v, session.Indefinite); err != nil {
		t.Fatalf("save session: %v", err)
	}

	return phrase
}

func TestConfigCommand(t *testing.T) {
	streams, out, errOut := newTestIOStreams(t)
	path := tempVaultPath(t)

	configPath := filepath.Join(t.TempDir(), "notevault.toml")
	if err := os.WriteFile(configPath, nil, 0o600); err != nil {
		t.Fatalf("write empty config file: %v", err)
	}

	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"config", "--file", path, "--config", configPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config command failed: %v\nstderr: %s", err, errOut.String())
	}

	var got struct {
		Resolved struct {
			VaultPath string `json:"vault_path"`
		} `json:"resolved_config"` //nolint:tagliatelle
	}

	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal output: %v\noutput: %s", err, out.String())
	}

	if got.Resolved.VaultPath != path {
		t.Errorf("got resolved vault path %q, want %q", got.Resolved.VaultPath, path)
	}
}

func TestCreateCommand_GeneratesMnemonic(t *testing.T) {
	streams, out, errOut := newTestIOStreams(t)
	path := tempVaultPath(t)

	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"create", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("create command failed: %v\nstderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "Vault ID:") {
		t.Errorf("got output %q, want it to mention the vault id", out.String())
	}
}

func TestCreateCommand_RejectsDuplicate(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	streams, _, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"create", "--file", path})

	if err := cmd.Execute(); err == nil {
		t.Fatal("got nil error, want vault-already-exists failure")
	}

	_ = errOut
}

func TestLockCommand(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	streams, out, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"lock", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("lock command failed: %v\nstderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "Vault locked.") {
		t.Errorf("got output %q, want lock confirmation", out.String())
	}
}

func TestLogoutCommand_ClearSessionBreaksAutoUnlock(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	streams, _, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"logout", "--clear-session", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("logout command failed: %v\nstderr: %s", err, errOut.String())
	}

	streams2, _, errOut2 := newTestIOStreams(t)
	autoUnlock := cli.NewDefaultNotevaultCommand(streams2, []string{"auto-unlock", "--file", path})

	if err := autoUnlock.Execute(); err == nil {
		t.Fatalf("got nil error after clearing session, want auto-unlock failure\nstderr: %s", errOut2.String())
	}
}

func TestMigrateCommand_NoLegacyNotes(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	streams, out, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"migrate", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate command failed: %v\nstderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "Migrated 0 note(s), 0 failed.") {
		t.Errorf("got output %q, want a zero-note migration summary", out.String())
	}
}

func TestBackupCommand_EmptyVault(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	backupPath := filepath.Join(t.TempDir(), "backup.json")

	streams, out, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"backup", backupPath, "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("backup command failed: %v\nstderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "Backup written to "+backupPath) {
		t.Errorf("got output %q, want it to confirm the backup path", out.String())
	}

	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file was not written: %v", err)
	}
}

func TestRestoreCommand_Preview(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	backupPath := filepath.Join(t.TempDir(), "backup.json")

	streams, _, errOut := newTestIOStreams(t)
	backupCmd := cli.NewDefaultNotevaultCommand(streams, []string{"backup", backupPath, "--file", path})

	if err := backupCmd.Execute(); err != nil {
		t.Fatalf("backup command failed: %v\nstderr: %s", err, errOut.String())
	}

	streams2, out2, errOut2 := newTestIOStreams(t)
	restoreCmd := cli.NewDefaultNotevaultCommand(streams2, []string{"restore", backupPath, "--preview", "--file", path})

	if err := restoreCmd.Execute(); err != nil {
		t.Fatalf("restore --preview command failed: %v\nstderr: %s", err, errOut2.String())
	}

	if !strings.Contains(out2.String(), "0 note(s)") {
		t.Errorf("got output %q, want a zero-note preview summary", out2.String())
	}
}

func TestDestroyCommand_Force(t *testing.T) {
	path := tempVaultPath(t)
	setupRememberedVault(t, path)

	streams, out, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"destroy", "--force", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("destroy command failed: %v\nstderr: %s", err, errOut.String())
	}

	if !strings.Contains(out.String(), "Vault destroyed.") {
		t.Errorf("got output %q, want destroy confirmation", out.String())
	}

	streams2, _, errOut2 := newTestIOStreams(t)
	createCmd := cli.NewDefaultNotevaultCommand(streams2, []string{"create", "--file", path})

	if err := createCmd.Execute(); err != nil {
		t.Fatalf("create after destroy failed: %v\nstderr: %s", err, errOut2.String())
	}
}

func TestMigrateCommand_LockedVaultFails(t *testing.T) {
	path := tempVaultPath(t)

	// Create the vault but never save a session, so no future process can
	// auto-unlock it.
	streams, _, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"create", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("create command failed: %v\nstderr: %s", err, errOut.String())
	}

	streams2, _, errOut2 := newTestIOStreams(t)
	migrateCmd := cli.NewDefaultNotevaultCommand(streams2, []string{"migrate", "--file", path})

	if err := migrateCmd.Execute(); err == nil {
		t.Fatalf("got nil error migrating a locked vault, want a failure\nstderr: %s", errOut2.String())
	}
}

func TestLogoutCommand_NoSessionFails(t *testing.T) {
	path := tempVaultPath(t)

	streams, _, errOut := newTestIOStreams(t)
	cmd := cli.NewDefaultNotevaultCommand(streams, []string{"create", "--file", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("create command failed: %v\nstderr: %s", err, errOut.String())
	}

	streams2, _, errOut2 := newTestIOStreams(t)
	logoutCmd := cli.NewDefaultNotevaultCommand(streams2, []string{"logout", "--file", path})

	if err := logoutCmd.Execute(); err == nil {
		t.Fatalf("got nil error logging out with nothing unlocked and no --clear-session\nstderr: %s", errOut2.String())
	}
}
