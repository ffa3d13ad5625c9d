package persist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"smartsettings/util/file"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// BackupMarker is inserted between file name stem and backup timestamp
const BackupMarker = "_backup_"

// ErrBackupNotFound is returned if backup to restore is not a backup of the settings file
var ErrBackupNotFound = errors.New("backup not found")

// Backups returns sorted (oldest first) paths of backups of settings file <path>.
//
// Backup is any file in the same directory which name starts with the stem of <path> and has the same suffixes,
// except <path> itself.
func (r repo) Backups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem, suffixes := splitName(base)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "Read settings directory")
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		name := entry.Name()
		if entry.IsDir() || name == base || !strings.HasPrefix(name, stem) {
			return "", false
		}
		_, otherSuffixes := splitName(name)
		return name, otherSuffixes == suffixes
	})
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) string {
		return filepath.Join(dir, name)
	}), nil
}

// Restore copies <backup> over settings file <path>.
//
// <backup> can be a file name or a path, and should be one of Backups(<path>).
func (r repo) Restore(path, backup string) error {
	backups, err := r.Backups(path)
	if err != nil {
		return err
	}
	backupPath, ok := lo.Find(backups, func(p string) bool {
		return p == backup || filepath.Base(p) == backup
	})
	if !ok {
		return errors.Wrapf(ErrBackupNotFound, "Restore %v from %v", path, backup)
	}
	if err := file.Copy(backupPath, path); err != nil {
		return errors.Wrapf(err, "Restore %v", path)
	}
	r.log.WithFields(logFields(path, backupPath)).Info("Restored settings from backup")
	return nil
}

// backup copies settings file <path> to a new backup and returns path of the backup
func (r repo) backup(path string) (string, error) {
	dir := filepath.Dir(path)
	stem, suffixes := splitName(filepath.Base(path))

	at := r.now()
	backupPath := filepath.Join(dir, backupName(stem, suffixes, at))
	for {
		_, err := os.Stat(backupPath)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "Get backup file info")
		}
		at = at.Add(time.Microsecond)
		backupPath = filepath.Join(dir, backupName(stem, suffixes, at))
	}

	if err := file.Copy(path, backupPath); err != nil {
		return "", errors.Wrap(err, "Create backup")
	}
	r.log.WithFields(logFields(path, backupPath)).Debug("Created backup")
	return backupPath, nil
}

// prune removes backups of settings file <path> except the newest <keep> ones.
//
// Unlimited keeps every backup.
func (r repo) prune(path string, keep int) error {
	if keep == Unlimited {
		return nil
	}
	backups, err := r.Backups(path)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}
	for _, backupPath := range backups[:len(backups)-keep] {
		if err := os.Remove(backupPath); err != nil {
			return errors.Wrap(err, "Remove backup")
		}
		r.log.WithFields(logFields(path, backupPath)).Debug("Removed backup")
	}
	return nil
}

// backupName returns file name of backup made at <at> for file with <stem> and <suffixes>
func backupName(stem, suffixes string, at time.Time) string {
	at = at.UTC()
	ts := at.Format("20060102T150405") + fmt.Sprintf("%06dZ", at.Nanosecond()/int(time.Microsecond))
	return stem + BackupMarker + ts + suffixes
}

// splitName returns file name <base> split to stem and suffixes at the first dot which is not leading.
//
// "settings.tar.gz" gives "settings" and ".tar.gz", ".profile.json" gives ".profile" and ".json".
func splitName(base string) (stem, suffixes string) {
	lead := len(base) - len(strings.TrimLeft(base, "."))
	if i := strings.IndexByte(base[lead:], '.'); i >= 0 {
		return base[:lead+i], base[lead+i:]
	}
	return base, ""
}
