// Package probe discovers a directory on a target volume that the process can
// actually write to, by attempting to create and delete a small probe file.
package probe

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Prober = (*FSProber)(nil)

// Prober finds a writable directory under a volume root.
type Prober interface {
	// FindWritableDir returns the first writable candidate directory and
	// true, or ("", false) when every candidate is unwritable. The latter is
	// a normal outcome on read-only or locked media, not an error.
	FindWritableDir(volumeRoot string) (string, bool)
}

// FSProber implements Prober against the local filesystem.
type FSProber struct {
	systemTempDir string
}

// NewFSProber returns an FSProber that uses systemTempDir as the final
// fallback candidate, normally os.TempDir().
func NewFSProber(systemTempDir string) *FSProber {
	return &FSProber{systemTempDir: systemTempDir}
}

// FindWritableDir tries, in priority order: the volume root itself, then its
// Users, Volumes, and tmp subdirectories, then the system temp directory.
// The first candidate that accepts a probe file wins.
func (p *FSProber) FindWritableDir(volumeRoot string) (string, bool) {
	candidates := []string{
		volumeRoot,
		filepath.Join(volumeRoot, "Users"),
		filepath.Join(volumeRoot, "Volumes"),
		filepath.Join(volumeRoot, "tmp"),
		p.systemTempDir,
	}

	for _, dir := range candidates {
		if isWritableDir(dir) {
			return dir, true
		}
	}
	return "", false
}

// isWritableDir reports whether dir exists, is a directory, and accepts the
// creation of a uniquely named one-byte file. The probe file is removed
// immediately; a failed removal is ignored since the write already proved the
// point.
func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}

	name := filepath.Join(dir, ".writeprobe-"+uuid.NewString())
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return false
	}

	_, writeErr := f.Write([]byte{0})
	closeErr := f.Close()
	_ = os.Remove(name)

	return writeErr == nil && closeErr == nil
}
