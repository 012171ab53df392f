// Package safeio holds the small set of careful file operations ama performs
// inside a job repository.
package safeio

import (
	"errors"
	"os"

	"github.com/go-git/go-billy/v5"
)

// DefaultFileMode is used for every file ama creates.
const DefaultFileMode os.FileMode = 0o644

// WriteFileIfAbsent creates path with data unless it already exists. The
// returned bool reports whether the file was written. Existing files are never
// opened for writing.
func WriteFileIfAbsent(fs billy.Filesystem, path string, data []byte) (bool, error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, DefaultFileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return false, err
	}
	return true, f.Close()
}

// CreateEmpty truncate-creates path as a zero-byte file.
func CreateEmpty(fs billy.Filesystem, path string) error {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return err
	}
	return f.Close()
}

// IsDir reports whether path exists in fs and is a directory.
func IsDir(fs billy.Filesystem, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}
