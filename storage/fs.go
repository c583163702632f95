package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	apperrors "github.com/xXAI-botXx/3xM/errors"
)

// DefaultExtensions are the image extensions a dataset directory is scanned for.
var DefaultExtensions = []string{".png", ".jpg"}

// ResetDir removes dir with all its contents and creates it again empty.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return apperrors.NewFilesystem("remove", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewFilesystem("mkdir", dir, err)
	}
	return nil
}

// RemoveDir deletes dir and everything below it.
func RemoveDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return apperrors.NewFilesystem("remove", dir, err)
	}
	return nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// ListImages returns the names of the regular files in dir whose extension is in
// exts. Order follows the directory listing and carries no meaning.
func ListImages(dir string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewFilesystem("list", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !HasExtension(entry.Name(), exts) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// WriteFile creates path, with its parent directories, and fills it through write.
// Failures to create, write or close the file are filesystem errors, a full disk
// included. Other errors from write are returned unchanged. A partial regular
// file is removed.
func WriteFile(path string, write func(io.Writer) error) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, apperrors.NewFilesystem("mkdir", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, apperrors.NewFilesystem("create", path, err)
	}

	cw := &countingWriter{w: f}
	if err := write(cw); err != nil {
		if info, statErr := f.Stat(); statErr == nil && info.Mode().IsRegular() {
			defer os.Remove(path)
		}
		f.Close()
		if cw.err != nil {
			return 0, apperrors.NewFilesystem("write", path, cw.err)
		}
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, apperrors.NewFilesystem("close", path, err)
	}
	return cw.n, nil
}

// countingWriter counts written bytes and keeps the first error the file
// itself reported, so encoder errors can be told apart from I/O failures.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil && c.err == nil {
		var pathErr *os.PathError
		var errno syscall.Errno
		if errors.As(err, &pathErr) || errors.As(err, &errno) {
			c.err = err
		}
	}
	return n, err
}
