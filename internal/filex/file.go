// Package filex contains filesystem helpers for the local database and the
// document upload flow.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNotRegularFile = errors.New("not a regular file")

// EnsureParentDir creates the directory that will hold path, so that SQLite
// can create the database file on first start. Paths without a directory
// component are left alone.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// RegularFile stats path and returns its size. Directories, devices and
// missing files are rejected.
func RegularFile(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return 0, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	return fi.Size(), nil
}
