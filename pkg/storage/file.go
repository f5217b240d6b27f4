package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File stores one document per slot under a directory. It is the closest
// analog to browser local storage for CLI and desktop consumers.
type File struct {
	dir string
}

// NewFile constructs a file store rooted at dir, creating it when missing.
func NewFile(dir string) (*File, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %q: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (s *File) Available() bool {
	if s == nil || s.dir == "" {
		return false
	}
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

func (s *File) Read(slot string) (string, bool, error) {
	path, err := s.slotPath(slot)
	if err != nil {
		return "", false, err
	}
	payload, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: read slot %q: %w", slot, err)
	}
	return string(payload), true, nil
}

func (s *File) Write(slot string, payload string) error {
	path, err := s.slotPath(slot)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		return fmt.Errorf("storage: write slot %q: %w", slot, err)
	}
	return nil
}

// slotPath maps a slot key onto a file name. Separators are rejected so a
// slot can never escape the store directory.
func (s *File) slotPath(slot string) (string, error) {
	if slot == "" {
		return "", fmt.Errorf("storage: slot is required")
	}
	if strings.ContainsAny(slot, `/\`) || slot == "." || slot == ".." {
		return "", fmt.Errorf("storage: invalid slot %q", slot)
	}
	return filepath.Join(s.dir, slot+".json"), nil
}
