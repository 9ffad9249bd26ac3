// Package storage keeps the plan data directory on disk, optionally sealed
// with an age passphrase.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"filippo.io/age"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"

	// verifyFile holds verifyMagic sealed with the passphrase
	verifyFile = ".encryption-verify"

	verifyMagic = `{"magic":"bizplan-encryption-verify","version":1}`

	// MinPasswordLength is the shortest passphrase accepted for encryption
	MinPasswordLength = 8
)

var (
	ErrLocked             = errors.New("storage is encrypted and locked")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrAlreadyEncrypted   = errors.New("encryption is already enabled")
	ErrNotEncrypted       = errors.New("encryption is not enabled")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrOutsideDataDir     = errors.New("path escapes the data directory")
	ErrUnsupportedPayload = errors.New("only .json files are stored")
)

// Storage reads and writes JSON files under one directory, sealing them when
// encryption is enabled
type Storage struct {
	baseDir   string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// Status summarizes the encryption state for the API
type Status struct {
	Encrypted bool `json:"encrypted"`
	Unlocked  bool `json:"unlocked"`
}

// New opens the data directory, creating it when missing
func New(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Storage{baseDir: baseDir}
	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
	}
	return s, nil
}

// BaseDir returns the data directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// Status reports whether the directory is encrypted and unlocked
func (s *Storage) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Encrypted: s.encrypted, Unlocked: !s.encrypted || s.identity != nil}
}

// Unlock checks the passphrase against the verify file and keeps the key
func (s *Storage) Unlock(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}
	identity, recipient, err := s.checkPassword(password)
	if err != nil {
		return err
	}
	s.identity, s.recipient = identity, recipient
	return nil
}

// Lock forgets the key
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.recipient = nil
}

// checkPassword derives the key pair and proves it opens the verify file.
// Caller must hold the lock.
func (s *Storage) checkPassword(password string) (*age.ScryptIdentity, *age.ScryptRecipient, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, nil, fmt.Errorf("create identity: %w", err)
	}
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, nil, fmt.Errorf("create recipient: %w", err)
	}
	sealed, err := os.ReadFile(filepath.Join(s.baseDir, verifyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("read verification file: %w", err)
	}
	plain, err := open(sealed, identity)
	if err != nil || string(plain) != verifyMagic {
		return nil, nil, ErrWrongPassword
	}
	return identity, recipient, nil
}

// resolve maps a name relative to the data directory to a path inside it
func (s *Storage) resolve(name string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.Clean("/"+name))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrOutsideDataDir
	}
	return path, nil
}

// ReadFile returns the plain contents of a file in the data directory
func (s *Storage) ReadFile(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !isAgeEncrypted(data) {
		return data, nil
	}
	if s.identity == nil {
		return nil, ErrLocked
	}
	return open(data, s.identity)
}

// WriteFile atomically replaces a file, sealing it when encryption is on
func (s *Storage) WriteFile(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return ErrUnsupportedPayload
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encrypted {
		if s.recipient == nil {
			return ErrLocked
		}
		if data, err = seal(data, s.recipient); err != nil {
			return fmt.Errorf("encrypt %s: %w", name, err)
		}
	}
	return atomicWrite(path, data)
}

// Exists reports whether a file is present in the data directory
func (s *Storage) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// atomicWrite writes to a temp file next to path and renames it into place
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func isAgeEncrypted(data []byte) bool {
	return len(data) > len(ageHeader) && string(data[:len(ageHeader)]) == ageHeader
}

func seal(data []byte, recipient *age.ScryptRecipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func open(data []byte, identity *age.ScryptIdentity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
