package file

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Copy copies <src> file path to <dst> file path, keeping permissions of <src>
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "Open source file")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "Get source file info")
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "Open destination file")
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "Copy file content")
	}
	return errors.Wrap(out.Close(), "Close destination file")
}

// WriteAtomic writes <data> to <path> with <perm> permissions through a temporary file in the same directory.
//
// Readers of <path> see either old or new content, never a partially written file.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "Create temporary file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "Write temporary file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "Close temporary file")
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return errors.Wrap(err, "Set file permissions")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "Replace file")
}
