package netconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "network.yaml"))

	creds, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if !creds.Empty() {
		t.Errorf("expected empty credentials, got %+v", creds)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	store := NewStore(path)

	want := Credentials{SSID: "GreenhouseNet", Passphrase: "correct horse"}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save(): %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	// File must be user-only since it carries a passphrase
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat(): %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("state file permissions = %o, want 0600", perm)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "network.yaml"))

	if err := store.Save(Credentials{SSID: "old", Passphrase: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(Credentials{SSID: "new", Passphrase: "b"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.SSID != "new" {
		t.Errorf("SSID = %q, want %q (only the last network is remembered)", got.SSID, "new")
	}
}

func TestClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "network.yaml"))

	if err := store.Save(Credentials{SSID: "net", Passphrase: "pw"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear(): %v", err)
	}

	creds, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !creds.Empty() {
		t.Errorf("expected empty credentials after Clear, got %+v", creds)
	}

	// Clearing twice is fine
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear(): %v", err)
	}
}
