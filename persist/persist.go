package persist

import (
	"io/fs"
	"os"
	"path/filepath"

	"smartsettings/cfg"
	"smartsettings/cipher"
	"smartsettings/codec"
	"smartsettings/settings"
	"smartsettings/util/copier"
	"smartsettings/util/file"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Unlimited represents backup count which keeps every backup
const Unlimited = cfg.UnlimitedBackups

// ErrBackupCount is returned if backup count is less than Unlimited
var ErrBackupCount = errors.New("bad backup count")

const (
	plainPerm     os.FileMode = 0644
	encryptedPerm os.FileMode = 0600
)

// SaveToString returns <v> encoded with codec of <r>.
//
// If <cryptoKey> is not empty, encoded text is encrypted and encoded with base64.
//
// If <opts> is nil, codec options are taken from program config.
func (r repo) SaveToString(v settings.Value, cryptoKey string, opts codec.Options) (string, error) {
	return r.saveToString(r.codec, v, cryptoKey, opts)
}

// LoadFromString returns value decoded from <text> with codec of <r>.
//
// If <cryptoKey> is not empty, <text> is decoded from base64 and decrypted first.
//
// Malformed text gives error marked with codec.ErrDecode. Wrong <cryptoKey> gives error marked with
// cipher.ErrDecrypt or, if decryption happens to give valid padding, with codec.ErrDecode.
func (r repo) LoadFromString(text, cryptoKey string, opts codec.Options) (settings.Value, error) {
	return r.loadFromString(r.codec, text, cryptoKey, opts)
}

// LoadFromNamed returns value decoded from <text> read from a source called <name>, like file path or URL path.
//
// Codec is chosen by extension of <name>, falling back to codec of <r>.
func (r repo) LoadFromNamed(name, text, cryptoKey string, opts codec.Options) (settings.Value, error) {
	return r.loadFromString(r.CodecFor(name), text, cryptoKey, opts)
}

// SaveToFile writes <v> to <path>, creating parent directories.
//
// Codec is chosen by extension of <path>, falling back to codec of <r>.
//
// If <path> already exists, a backup copy of it is made first unless <backupCount> is 0. Then backups older than the
// newest <backupCount> are removed; Unlimited removes none, 0 removes every backup.
func (r repo) SaveToFile(v settings.Value, path, cryptoKey string, backupCount int, opts codec.Options) error {
	if backupCount < Unlimited {
		return errors.Wrapf(ErrBackupCount, "Save %v with backup count %v", path, backupCount)
	}
	log := r.log.WithField("path", path)

	text, err := r.saveToString(r.CodecFor(path), v, cryptoKey, opts)
	if err != nil {
		return errors.Wrapf(err, "Save %v", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "Create settings directory")
	}

	_, err = os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("Settings file does not exist, writing without backup")
	case err != nil:
		return errors.Wrap(err, "Get settings file info")
	default:
		if backupCount != 0 {
			if _, err := r.backup(path); err != nil {
				return err
			}
		}
		if err := r.prune(path, backupCount); err != nil {
			return err
		}
	}

	perm := plainPerm
	if cryptoKey != "" {
		perm = encryptedPerm
	}
	if err := file.WriteAtomic(path, []byte(text), perm); err != nil {
		return errors.Wrapf(err, "Write %v", path)
	}
	log.WithField("encrypted", cryptoKey != "").Info("Saved settings")
	return nil
}

// LoadFromFile returns value read from <path>.
//
// Codec is chosen by extension of <path>, falling back to codec of <r>.
//
// If <path> does not exist or is not a regular file, returns a copy of <def> without creating the file.
func (r repo) LoadFromFile(path, cryptoKey string, def settings.Value, opts codec.Options) (settings.Value, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.log.WithField("path", path).Debug("Settings file does not exist, using default")
		return def.Clone(), nil
	}
	if err != nil {
		return settings.NullValue(), errors.Wrapf(err, "Stat %v", path)
	}
	if !info.Mode().IsRegular() {
		r.log.WithField("path", path).Warn("Settings path is not a regular file, using default")
		return def.Clone(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return settings.NullValue(), errors.Wrapf(err, "Read %v", path)
	}
	v, err := r.loadFromString(r.CodecFor(path), string(content), cryptoKey, opts)
	if err != nil {
		return settings.NullValue(), errors.Wrapf(err, "Load %v", path)
	}
	return v, nil
}

// saveToString returns <v> encoded with <c>, optionally encrypted with <cryptoKey>
func (r repo) saveToString(c codec.Codec, v settings.Value, cryptoKey string, opts codec.Options) (string, error) {
	text, err := c.Encode(v, r.options(opts))
	if err != nil {
		return "", errors.Wrap(err, "Encode settings")
	}
	if cryptoKey == "" {
		return text, nil
	}
	encrypted, err := cipher.EncryptString(text, cryptoKey)
	return encrypted, errors.Wrap(err, "Encrypt settings")
}

// loadFromString returns value decoded from <text> with <c>, optionally decrypted with <cryptoKey>
func (r repo) loadFromString(c codec.Codec, text, cryptoKey string, opts codec.Options) (settings.Value, error) {
	if cryptoKey != "" {
		decrypted, err := cipher.DecryptString(text, cryptoKey)
		if err != nil {
			return settings.NullValue(), errors.Wrap(err, "Decrypt settings")
		}
		text = decrypted
	}
	v, err := c.Decode(text, r.options(opts))
	if err != nil {
		return settings.NullValue(), errors.Wrap(err, "Decode settings")
	}
	return v, nil
}

// options returns <opts> or a copy of codec options from program config if <opts> is nil
func (r repo) options(opts codec.Options) codec.Options {
	if opts != nil || r.cfg.Persist.CodecOptions == nil {
		return opts
	}
	return codec.Options(copier.PDeep(r.cfg.Persist.CodecOptions))
}

// logFields returns log fields describing backup <backup> of <path>
func logFields(path, backup string) logrus.Fields {
	return logrus.Fields{"path": path, "backup": backup}
}
