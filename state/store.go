package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists Devices as a single JSON file. Save replaces the file atomically, so a
// reader calling Load concurrently sees either the previous or the new content.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

func (s FileStore) Path() string {
	return s.path
}

// Load returns an empty mapping when the file does not exist yet.
func (s FileStore) Load() (Devices, error) {
	stateBytes, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return NewDevices(), nil
	} else if err != nil {
		return nil, err
	}
	if errs := ValidateState(stateBytes); len(errs) > 0 {
		return nil, fmt.Errorf("invalid state file %v: %w", s.path, errors.Join(errs...))
	}
	return FromJson(stateBytes)
}

func (s FileStore) Save(devices Devices) error {
	stateBytes, err := devices.ToJson()
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.path, stateBytes)
}

// WriteFileAtomic writes data to a temporary file next to filename, syncs it and renames it over filename.
func WriteFileAtomic(filename string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	if err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, filename)
}
