package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "settings.json")
	dst := filepath.Join(dir, "settings_backup.json")
	assert.NoError(t, os.WriteFile(src, []byte("content"), 0600))

	err := Copy(src, dst)
	assert.NoError(t, err, "should not return error")

	// Test overwrite
	assert.NoError(t, os.WriteFile(src, []byte("new"), 0600))
	err = Copy(src, dst)
	assert.NoError(t, err, "should not return error")

	content, err := os.ReadFile(dst)
	assert.NoError(t, err)
	assert.Exactly(t, "new", string(content), "should overwrite destination")

	info, err := os.Stat(dst)
	assert.NoError(t, err)
	assert.Exactly(t, os.FileMode(0600), info.Mode().Perm(), "should keep permissions of the source")

	err = Copy(filepath.Join(dir, "missing.json"), dst)
	assert.Error(t, err, "should return error on missing source")
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")

	err := WriteAtomic(path, []byte("first"), 0644)
	assert.NoError(t, err, "should not return error")

	err = WriteAtomic(path, []byte("second"), 0600)
	assert.NoError(t, err, "should not return error")

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Exactly(t, "second", string(content), "should replace content")

	info, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Exactly(t, os.FileMode(0600), info.Mode().Perm(), "should set permissions")

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1, "should not leave temporary files")

	err = WriteAtomic(filepath.Join(dir, "missing", "settings.json"), []byte("x"), 0644)
	assert.Error(t, err, "should return error if directory does not exist")
}
