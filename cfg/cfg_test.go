package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartsettings/util/copier"
	"smartsettings/util/logger"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	log := logger.New(logrus.DebugLevel)

	path := filepath.Join(t.TempDir(), "nested", "smartsettings_test.yaml")

	// Test creation of the default config
	actual, isNewCfg, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.True(t, isNewCfg, "should return true")
	assert.Equal(t, NewDefCfg(), actual, "should return default config")
	assert.FileExists(t, path, "should write default config")

	// Test reading of the default config
	actual, isNewCfg, err = Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.False(t, isNewCfg, "should return false")
	assert.Equal(t, NewDefCfg(), actual, "should return default config")

	// Test reading exising non-default config
	actual, isNewCfg, err = Init(log, "test.yaml")
	assert.NoError(t, err, "should not return error")
	assert.False(t, isNewCfg, "should return false")

	expected := Root{
		Persist: Persist{
			Format:       "yaml",
			CodecOptions: map[string]any{"indent": 4},
			BackupCount:  3,
			CryptoKeyEnv: "",
		},
		Merge: Merge{
			SourceTimeout: 90 * time.Second,
		},
		Check: Check{
			MaxWorkers: 8,
		},
	}
	assert.Equal(t, expected, actual, "should read values from file")
}

func TestInitPartial(t *testing.T) {
	log := logger.New(logrus.DebugLevel)

	path := filepath.Join(t.TempDir(), "partial.yaml")
	err := os.WriteFile(path, []byte("persist:\n  backup_count: 0\n"), 0644)
	assert.NoError(t, err)

	actual, _, err := Init(log, path)
	assert.NoError(t, err, "should not return error")

	expected := NewDefCfg()
	expected.Persist.BackupCount = 0
	assert.Equal(t, expected, actual, "missing values should be taken from defaults")
}

func TestInitEnv(t *testing.T) {
	log := logger.New(logrus.DebugLevel)

	path := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(EnvPrefix+"PERSIST__BACKUP_COUNT", "5")
	t.Setenv(EnvPrefix+"CHECK__MAX_WORKERS", "2")

	actual, _, err := Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, 5, actual.Persist.BackupCount, "should take value from environment")
	assert.Exactly(t, 2, actual.Check.MaxWorkers, "should take value from environment")

	t.Setenv(EnvPrefix+"PERSIST__BACKUP_COUNT", "unlimited")
	actual, _, err = Init(log, path)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, UnlimitedBackups, actual.Persist.BackupCount, "should decode 'unlimited'")
}

func TestInitErrors(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	dir := t.TempDir()

	cases := map[string]string{
		"unknown.yaml": "persist:\n  unknown_key: 1\n",
		"format.yaml":  "persist:\n  format: 'toml'\n",
		"backups.yaml": "persist:\n  backup_count: -2\n",
		"workers.yaml": "check:\n  max_workers: 0\n",
		"timeout.yaml": "merge:\n  source_timeout: 'soon'\n",
		"broken.yaml":  "persist: [",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		assert.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, _, err := Init(log, path)
		assert.Error(t, err, "should return error for %v", name)
	}

	_, _, err := Init(log, filepath.Join(dir, "workers.yaml"))
	var badValErr BadValueError
	assert.True(t, errors.As(err, &badValErr), "should return BadValueError")
	assert.Exactly(t, "check.max_workers", badValErr.Key)
}

func TestCryptoKey(t *testing.T) {
	root := NewDefCfg()
	t.Setenv(root.Persist.CryptoKeyEnv, "secret")
	assert.Exactly(t, "secret", root.CryptoKey(), "should read passphrase from environment")

	root.Persist.CryptoKeyEnv = ""
	assert.Exactly(t, "", root.CryptoKey(), "should not read environment if variable name is empty")
}

func TestValidate(t *testing.T) {
	def := NewDefCfg()
	assert.NoError(t, def.Validate(), "default config should be valid")

	cases := map[string]func(r *Root){
		"persist.format":       func(r *Root) { r.Persist.Format = "toml" },
		"persist.backup_count": func(r *Root) { r.Persist.BackupCount = -2 },
		"merge.source_timeout": func(r *Root) { r.Merge.SourceTimeout = 0 },
		"check.max_workers":    func(r *Root) { r.Check.MaxWorkers = 0 },
	}
	for key, modify := range cases {
		root := copier.TDeep(t, def)
		root.Persist.CodecOptions["indent"] = 8
		modify(&root)

		var badValErr BadValueError
		assert.True(t, errors.As(root.Validate(), &badValErr), "should return BadValueError for %v", key)
		assert.Exactly(t, key, badValErr.Key, "should name the bad key")
	}

	assert.Equal(t, NewDefCfg(), def, "source config should not be modified")

	yml := copier.TDeep(t, def)
	yml.Persist.Format = "YML"
	assert.NoError(t, yml.Validate(), "format should be case insensitive")
}
