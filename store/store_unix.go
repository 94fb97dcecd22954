//go:build unix

package store

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// mkdirUnderParent creates path with mode 0700, using Mkdirat against the
// parent directory's handle when path is absolute and plain Mkdir
// otherwise, tolerating an already-existing directory.
func mkdirUnderParent(path string) error {
	if filepath.IsAbs(path) {
		parent := filepath.Dir(path)
		dirFd, err := unix.Open(parent, unix.O_RDONLY|unix.O_DIRECTORY, 0)
		if err != nil {
			// parent not yet openable (e.g. first path component at "/"):
			// fall back to a plain absolute Mkdir.
			if mkErr := unix.Mkdir(path, objectMode); mkErr != nil && !os.IsExist(mkErr) {
				return mkErr
			}
			return nil
		}
		defer unix.Close(dirFd)

		if err := unix.Mkdirat(dirFd, filepath.Base(path), objectMode); err != nil && !os.IsExist(err) {
			return err
		}
		return nil
	}

	if err := unix.Mkdir(path, objectMode); err != nil && !os.IsExist(err) {
		return err
	}
	return nil
}
