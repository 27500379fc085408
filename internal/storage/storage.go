package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tiliavir/sa3aty/internal/model"
)

// Fixed logical keys of the two whole-collection snapshots.
const (
	KeyProjects = "projects"
	KeyEntries  = "entries"
)

// KV is a local durable key-value store holding string values.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// FileKV stores each key as <dir>/<key>.json.
type FileKV struct {
	dir string
}

// NewFileKV returns a FileKV rooted at dir. The directory is created lazily.
func NewFileKV(dir string) *FileKV {
	return &FileKV{dir: dir}
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get returns the stored value for key. A missing file is reported as ok=false.
func (f *FileKV) Get(key string) (string, bool, error) {
	path := f.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return string(data), true, nil
}

// Set atomically writes value under key.
func (f *FileKV) Set(key, value string) error {
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(value), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Quarantine moves the file behind key aside so a corrupt snapshot is kept for
// inspection instead of being overwritten by the next save.
func (f *FileKV) Quarantine(key string) (string, error) {
	path := f.path(key)
	backupPath := path + ".corrupt"
	if err := os.Rename(path, backupPath); err != nil {
		return "", fmt.Errorf("storage error backing up %s: %w", path, err)
	}
	return backupPath, nil
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// quarantiner is implemented by stores that can set corrupt values aside.
type quarantiner interface {
	Quarantine(key string) (string, error)
}

// LoadSnapshot reads both collections. Missing or unparsable snapshots yield
// empty collections; parse failures are logged and the bad file is backed up
// when the store supports it.
func LoadSnapshot(kv KV, logger *log.Logger) ([]model.Project, []model.TimeEntry) {
	if logger == nil {
		logger = log.Default()
	}
	projects := []model.Project{}
	entries := []model.TimeEntry{}
	if err := load(kv, KeyProjects, &projects); err != nil {
		logger.Printf("storage: loading %s: %v", KeyProjects, err)
		projects = []model.Project{}
	}
	if err := load(kv, KeyEntries, &entries); err != nil {
		logger.Printf("storage: loading %s: %v", KeyEntries, err)
		entries = []model.TimeEntry{}
	}
	for i := range entries {
		if entries[i].Pauses == nil {
			entries[i].Pauses = []model.TimePause{}
		}
	}
	return projects, entries
}

var errCorrupt = errors.New("corrupt snapshot")

func load(kv KV, key string, dst any) error {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return err
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		if q, ok := kv.(quarantiner); ok {
			if backup, qerr := q.Quarantine(key); qerr == nil {
				return fmt.Errorf("%w (backed up to %s): %v", errCorrupt, backup, err)
			}
		}
		return fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return nil
}

// SaveProjects writes the whole project collection under KeyProjects.
func SaveProjects(kv KV, projects []model.Project) error {
	if projects == nil {
		projects = []model.Project{}
	}
	return save(kv, KeyProjects, projects)
}

// SaveEntries writes the whole entry collection under KeyEntries.
func SaveEntries(kv KV, entries []model.TimeEntry) error {
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	return save(kv, KeyEntries, entries)
}

func save(kv KV, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling %s: %w", key, err)
	}
	return kv.Set(key, string(data))
}
