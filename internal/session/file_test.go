package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if rec.Authenticated() {
		t.Error("empty store reports authenticated")
	}

	if err := store.SetToken("tok-1"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if err := store.SetProfile("Aziza", "Karimova"); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}
	if err := store.SetTheme("dark"); err != nil {
		t.Fatalf("SetTheme() error = %v", err)
	}

	// A fresh store over the same file sees the persisted record.
	reopened := NewFileStore(path)
	rec, err = reopened.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Record{AccessToken: "tok-1", FirstName: "Aziza", LastName: "Karimova", Theme: "dark"}
	if rec != want {
		t.Errorf("record = %+v, want %+v", rec, want)
	}
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	if err := store.SetToken("secret"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestFileStoreNotifiesSubscribers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	var seen []Record
	store.Subscribe(func(r Record) { seen = append(seen, r) })

	store.SetToken("tok-1")
	store.Clear()

	if len(seen) != 2 {
		t.Fatalf("notifications = %d, want 2", len(seen))
	}
	if seen[0].AccessToken != "tok-1" {
		t.Errorf("first notification = %+v", seen[0])
	}
	if seen[1] != (Record{}) {
		t.Errorf("clear notification = %+v", seen[1])
	}
}

func TestFileStoreClearMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on missing file error = %v", err)
	}
}
