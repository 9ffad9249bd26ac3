package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// dataFiles lists the .json files of the data directory
func (s *Storage) dataFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".tmp") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// EnableEncryption seals every plan file with the passphrase. On failure the
// files already sealed are opened again.
func (s *Storage) EnableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return fmt.Errorf("create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	files, err := s.dataFiles()
	if err != nil {
		return fmt.Errorf("scan data dir: %w", err)
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	sealed, err := seal([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("seal verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, sealed); err != nil {
		return fmt.Errorf("write verification file: %w", err)
	}

	for i, path := range files {
		err := rewrite(path, func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return data, nil
			}
			return seal(data, recipient)
		})
		if err != nil {
			s.rollback(files[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := os.WriteFile(filepath.Join(s.baseDir, markerFile), []byte("encrypted"), 0644); err != nil {
		s.rollback(files, identity)
		os.Remove(verifyPath)
		return fmt.Errorf("write marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	return nil
}

// DisableEncryption opens every sealed file and removes the marker. The
// passphrase must match.
func (s *Storage) DisableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return ErrNotEncrypted
	}
	identity, _, err := s.checkPassword(password)
	if err != nil {
		return err
	}

	files, err := s.dataFiles()
	if err != nil {
		return fmt.Errorf("scan data dir: %w", err)
	}
	for _, path := range files {
		err := rewrite(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return open(data, identity)
		})
		if err != nil {
			return fmt.Errorf("decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	return nil
}

// rewrite transforms a file in place through a temp file
func rewrite(path string, fn func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := fn(data)
	if err != nil {
		return err
	}
	return atomicWrite(path, out)
}

// rollback opens files sealed by a failed EnableEncryption, best effort
func (s *Storage) rollback(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		rewrite(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return data, nil
			}
			return open(data, identity)
		})
	}
}
