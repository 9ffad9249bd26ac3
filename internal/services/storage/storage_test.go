package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const planJSON = `{"version":1,"base_scenario":"conservative"}`

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.WriteFile("plan.json", []byte(planJSON)); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	read, err := store.ReadFile("plan.json")
	if err != nil || string(read) != planJSON {
		t.Fatalf("Read before encryption = %q, %v", read, err)
	}

	password := "testpassword123"
	if err := store.EnableEncryption(password); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}
	if st := store.Status(); !st.Encrypted || !st.Unlocked {
		t.Errorf("Status = %+v, want encrypted and unlocked", st)
	}

	raw, _ := os.ReadFile(filepath.Join(dir, "plan.json"))
	if !isAgeEncrypted(raw) {
		t.Error("File should be encrypted on disk")
	}

	read, err = store.ReadFile("plan.json")
	if err != nil || string(read) != planJSON {
		t.Errorf("Read after encryption = %q, %v", read, err)
	}

	store.Lock()
	if _, err := store.ReadFile("plan.json"); !errors.Is(err, ErrLocked) {
		t.Errorf("Read while locked err = %v, want ErrLocked", err)
	}
	if err := store.WriteFile("plan.json", []byte(planJSON)); !errors.Is(err, ErrLocked) {
		t.Errorf("Write while locked err = %v, want ErrLocked", err)
	}
	if err := store.Unlock(password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}

	if err := store.DisableEncryption(password); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}
	if store.Status().Encrypted {
		t.Error("Expected encryption to be disabled")
	}
	raw, _ = os.ReadFile(filepath.Join(dir, "plan.json"))
	if string(raw) != planJSON {
		t.Errorf("Raw content after decryption = %q", raw)
	}
}

func TestReopenEncryptedDir(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	store.WriteFile("plan.json", []byte(planJSON))
	if err := store.EnableEncryption("correctpassword"); err != nil {
		t.Fatal(err)
	}

	reopened, _ := New(dir)
	if st := reopened.Status(); !st.Encrypted || st.Unlocked {
		t.Fatalf("Status = %+v, want encrypted and locked", st)
	}
	if err := reopened.Unlock("wrongpassword"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("err = %v, want ErrWrongPassword", err)
	}
	if err := reopened.Unlock("correctpassword"); err != nil {
		t.Fatal(err)
	}
	read, _ := reopened.ReadFile("plan.json")
	if string(read) != planJSON {
		t.Errorf("read = %q", read)
	}
}

func TestEncryptionErrors(t *testing.T) {
	store, _ := New(t.TempDir())

	if err := store.EnableEncryption("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
	if err := store.DisableEncryption("whatever1"); !errors.Is(err, ErrNotEncrypted) {
		t.Errorf("err = %v, want ErrNotEncrypted", err)
	}
	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatal(err)
	}
	if err := store.EnableEncryption("testpassword123"); !errors.Is(err, ErrAlreadyEncrypted) {
		t.Errorf("err = %v, want ErrAlreadyEncrypted", err)
	}
	if err := store.DisableEncryption("not-the-password"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("err = %v, want ErrWrongPassword", err)
	}
}

func TestNewFilesEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	if err := store.WriteFile("backups/2026-01-01.json", []byte(planJSON)); err != nil {
		t.Fatalf("Failed to write new file: %v", err)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "backups", "2026-01-01.json"))
	if !isAgeEncrypted(raw) {
		t.Error("New file should be encrypted on disk")
	}
	read, _ := store.ReadFile("backups/2026-01-01.json")
	if string(read) != planJSON {
		t.Errorf("Content mismatch: got %q", read)
	}
}

func TestPathsStayInsideDataDir(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(filepath.Join(dir, "data"))

	if err := store.WriteFile("../../escape.json", []byte(planJSON)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.json")); err == nil {
		t.Error("write escaped the data directory")
	}
	if !store.Exists("escape.json") {
		t.Error("file should land inside the data directory")
	}
	if err := store.WriteFile("notes.txt", []byte("x")); !errors.Is(err, ErrUnsupportedPayload) {
		t.Errorf("err = %v, want ErrUnsupportedPayload", err)
	}
	if _, err := store.ReadFile(""); !errors.Is(err, ErrOutsideDataDir) {
		t.Errorf("err = %v, want ErrOutsideDataDir", err)
	}
}
