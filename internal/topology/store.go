package topology

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tunedrive/tunedrive/internal/ctxlog"
)

// DefaultPath returns the implicit per-host location of the topology state
// file, beneath the user cache directory.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve user cache dir: %w", err)
	}
	return filepath.Join(cacheDir, "tunedrive", "topology.yaml"), nil
}

// Store persists the Execution Topology State to a single YAML file.
// Saving is idempotent: re-saving an identical topology rewrites the same
// bytes.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	if path == "" {
		panic("topology store path must not be empty")
	}
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Save writes the topology, overwriting any previous state file.
func (s *Store) Save(ctx context.Context, t Topology) error {
	logger := ctxlog.FromContext(ctx)

	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal topology: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create topology dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write topology state: %w", err)
	}

	logger.Debug("Topology state saved.", "path", s.path, "num_processes", t.NumProcesses, "mixed_precision", t.MixedPrecision)
	return nil
}

// Load reads the persisted topology state back.
func (s *Store) Load(ctx context.Context) (Topology, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Topology{}, fmt.Errorf("read topology state: %w", err)
	}

	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("parse topology state %s: %w", s.path, err)
	}
	return t, nil
}
