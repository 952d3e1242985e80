package scenario

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver locates scenario documents across candidate filesystem locations.
// The zero value is not usable; construct with NewResolver.
type Resolver struct {
	baseDir string
	exists  func(string) bool
}

// NewResolver creates a Resolver anchored at baseDir (the service's config
// root, tried last).
func NewResolver(baseDir string) *Resolver {
	return &Resolver{
		baseDir: baseDir,
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

// NewResolverFunc creates a Resolver with an injected existence check, for
// tests.
func NewResolverFunc(baseDir string, exists func(string) bool) *Resolver {
	return &Resolver{baseDir: baseDir, exists: exists}
}

// Resolve tries, in order: the path as given, relative to the current
// directory, one directory up, with a leading "./" stripped, and anchored to
// the resolver's base directory with the same stripping applied. The first
// existing candidate wins. When none exist the original path is returned
// unchanged so the downstream load fails with a clear not-found error rather
// than a silently substituted file.
func (r *Resolver) Resolve(path string) string {
	stripped := strings.TrimPrefix(path, "./")

	candidates := []string{
		path,
		"./" + stripped,
		"../" + stripped,
		stripped,
		filepath.Join(r.baseDir, stripped),
	}

	for _, c := range candidates {
		if r.exists(c) {
			return c
		}
	}
	return path
}
