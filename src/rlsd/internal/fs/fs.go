package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// RlsdFS wraps the filesystem operations used by rlsd.
type RlsdFS interface {
	UserCacheDir() (string, error)
	MkdirAll(path string) error
	DirExists(path string) (bool, error)
	FileExists(path string) (bool, error)
	ReadFile(name string) ([]byte, error)
	TempFile(dir, pattern string) (*os.File, error)
	Rename(oldpath, newpath string) error
	Chmod(name string, mode os.FileMode) error
	Remove(name string) error
	// CanonicalPath returns the absolute form of path using the casing stored on disk.
	CanonicalPath(path string) (string, error)
	// FindUp returns the closest directory at or above dir, and no higher than stop, containing a file called name.
	FindUp(dir string, stop string, name string) (string, bool)
}

type fsImpl struct{}

// New creates a new RlsdFS.
func New() RlsdFS {
	return fsImpl{}
}

// UserCacheDir returns the user's cache directory.
func (fsImpl) UserCacheDir() (string, error) { return os.UserCacheDir() }

// MkdirAll creates a directory and all its parents.
func (fsImpl) MkdirAll(path string) error { return os.MkdirAll(path, os.ModePerm) }

func (fsImpl) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

func (fsImpl) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (fsImpl) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (fsImpl) TempFile(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(dir, pattern)
}

func (fsImpl) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (fsImpl) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

func (fsImpl) Remove(name string) error {
	return os.Remove(name)
}

// CanonicalPath walks path one component at a time. Components that do not exist verbatim are
// matched case-insensitively against their parent directory, so that a path typed with the wrong
// casing on a case-insensitive filesystem resolves to the name stored on disk.
// Components that cannot be found at all are kept as given.
func (f fsImpl) CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	volume := filepath.VolumeName(abs)
	rest := strings.TrimPrefix(abs[len(volume):], string(filepath.Separator))
	result := volume + string(filepath.Separator)
	if rest == "" {
		return result, nil
	}

	components := strings.Split(rest, string(filepath.Separator))
	for i, component := range components {
		entries, err := os.ReadDir(result)
		if err != nil {
			// Parent is unreadable or missing, nothing further can be canonicalized.
			return filepath.Join(append([]string{result}, components[i:]...)...), nil
		}
		result = filepath.Join(result, matchEntry(entries, component))
	}
	return result, nil
}

func (fsImpl) FindUp(dir string, stop string, name string) (string, bool) {
	dir = filepath.Clean(dir)
	stop = filepath.Clean(stop)
	for {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return dir, true
		}
		if dir == stop {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func matchEntry(entries []fs.DirEntry, name string) string {
	for _, e := range entries {
		if e.Name() == name {
			return name
		}
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return e.Name()
		}
	}
	return name
}
