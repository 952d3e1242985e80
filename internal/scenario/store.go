package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrStorage marks a failure to persist a generated scenario document.
// Surfaced to callers as an internal error, not retried.
var ErrStorage = errors.New("scenario storage")

// Store manages generated trajectory documents on disk. Every write gets a
// unique filename so concurrent requests never collide on a shared temp path.
type Store struct {
	dir      string
	maxFiles int
}

// NewStore creates a Store that writes documents into dir and keeps at most
// maxFiles generated files.
func NewStore(dir string, maxFiles int) *Store {
	if maxFiles <= 0 {
		maxFiles = 20
	}
	return &Store{dir: dir, maxFiles: maxFiles}
}

// Write serializes doc to a uniquely named file and prunes old generated
// files beyond the store's limit. Returns the path of the written file.
func (s *Store) Write(doc *Description) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrStorage, s.dir, err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: serializing document: %v", ErrStorage, err)
	}

	name := fmt.Sprintf("trajectory_%s.yml", uuid.NewString())
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", ErrStorage, path, err)
	}

	if err := s.prune(); err != nil {
		// The document was written; a failed prune should not fail the request.
		return path, nil
	}
	return path, nil
}

type storedFile struct {
	name    string
	modTime time.Time
}

func (s *Store) listGenerated() ([]storedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var files []storedFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "trajectory_") || !strings.HasSuffix(name, ".yml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, storedFile{name: name, modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

func (s *Store) prune() error {
	files, err := s.listGenerated()
	if err != nil {
		return err
	}
	if len(files) <= s.maxFiles {
		return nil
	}

	for _, f := range files[:len(files)-s.maxFiles] {
		if err := os.Remove(filepath.Join(s.dir, f.name)); err != nil {
			return fmt.Errorf("pruning %s: %w", f.name, err)
		}
	}
	return nil
}
