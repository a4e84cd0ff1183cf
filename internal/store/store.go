package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agenthands/atlas/internal/core/model"
)

// ErrNotFound is returned when loading a map name that was never saved.
var ErrNotFound = errors.New("map not found")

// InvariantViolation indicates a caller tried to persist a map that breaks
// the id-uniqueness invariant. It aborts the save; the previous file is left
// intact.
type InvariantViolation struct {
	MapName string
	Err     error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("refusing to save map %q: %v", e.MapName, e.Err)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

// Store persists one JSON file per named map under a data directory.
// Saves are atomic full replaces (write temp, rename), so concurrent
// sessions racing on the same name resolve last-writer-wins without
// partial writes.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid map name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *Store) Load(name string) (model.Map, error) {
	path, err := s.path(name)
	if err != nil {
		return model.Map{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Map{}, fmt.Errorf("map %q: %w", name, ErrNotFound)
		}
		return model.Map{}, fmt.Errorf("failed to read map %q: %w", name, err)
	}

	var m model.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Map{}, fmt.Errorf("failed to parse map %q: %w", name, err)
	}
	return m, nil
}

func (s *Store) Save(m model.Map) error {
	path, err := s.path(m.Name)
	if err != nil {
		return err
	}

	if err := m.Validate(); err != nil {
		return &InvariantViolation{MapName: m.Name, Err: err}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map %q: %w", m.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, m.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write map %q: %w", m.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace map %q: %w", m.Name, err)
	}
	return nil
}

func (s *Store) Exists(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns the saved map names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a saved map. Explicit user action; reconciliation never
// deletes.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("map %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete map %q: %w", name, err)
	}
	return nil
}
