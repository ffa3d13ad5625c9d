package cfg

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

//go:embed default.yaml
var defCfgBytes []byte

// EnvPrefix is the prefix of environment variables overriding program config values.
//
// Nested keys are separated by double underscore: SMARTSETTINGS_CFG_PERSIST__BACKUP_COUNT=3.
const EnvPrefix = "SMARTSETTINGS_CFG_"

// UnlimitedBackups represents backup count which keeps every backup
const UnlimitedBackups = -1

// Root represents root settings of the program
type Root struct {
	Persist Persist `koanf:"persist"`
	Merge   Merge   `koanf:"merge"`
	Check   Check   `koanf:"check"`
}

// Persist represents settings files persistence settings of the program
type Persist struct {
	// Format represents codec name to use for files with unknown extension: 'json' or 'yaml'
	Format string `koanf:"format"`

	// CodecOptions represents options passed through to the codec
	CodecOptions map[string]any `koanf:"codec_options"`

	// BackupCount represents amount of backup files to keep.
	//
	// UnlimitedBackups keeps every backup, 0 disables backups.
	BackupCount int `koanf:"backup_count"`

	// CryptoKeyEnv represents name of the environment variable to read encryption passphrase from
	CryptoKeyEnv string `koanf:"crypto_key_env"`
}

// Merge represents 'merge' command settings of the program
type Merge struct {
	// SourceTimeout represents maximum time to wait for remote source settings
	SourceTimeout time.Duration `koanf:"source_timeout"`
}

// Check represents 'check' command settings of the program
type Check struct {
	// MaxWorkers represents maximum amount of files to read simultaneously
	MaxWorkers int `koanf:"max_workers"`
}

// BadValueError represents error thrown if program config has invalid value
type BadValueError struct {
	Key    string
	Value  any
	Reason string
}

// Error is used to satisfy golang error interface
func (e BadValueError) Error() string {
	return fmt.Sprintf("Bad value of %v: %v; %v", e.Key, e.Value, e.Reason)
}

// Init returns config instance and false if config at <cfgFilePath> already exist.
//
// If config does not exist, writes a default one and returns default instance and true.
//
// Values missing in the file are taken from defaults. Environment variables with EnvPrefix override file values.
//
// Can return errors defined in this package: BadValueError.
func Init(log *logrus.Logger, cfgFilePath string) (Root, bool, error) {
	log.Debugf("Reading program config %v", cfgFilePath)

	var root Root
	isNew := false
	ko := koanf.New(".")

	if err := ko.Load(rawbytes.Provider(defCfgBytes), yaml.Parser()); err != nil {
		return root, false, errors.Wrap(err, "Load default config")
	}

	if _, err := os.Stat(cfgFilePath); errors.Is(err, fs.ErrNotExist) {
		log.Infof("Config file not found, creating a default: %v", cfgFilePath)
		if err := WriteDefault(cfgFilePath); err != nil {
			return root, false, err
		}
		isNew = true
	} else if err := ko.Load(file.Provider(cfgFilePath), yaml.Parser()); err != nil {
		return root, false, errors.Wrap(err, "Load config")
	}

	envProvider := env.Provider(EnvPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	})
	if err := ko.Load(envProvider, nil); err != nil {
		return root, false, errors.Wrap(err, "Load config from environment")
	}

	decoder := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		func(from, to reflect.Type, fromData any) (any, error) {
			if from.Kind() == reflect.String && to.Kind() == reflect.Int {
				if strings.EqualFold(strings.TrimSpace(fromData.(string)), "unlimited") {
					return UnlimitedBackups, nil
				}
			}
			return fromData, nil
		},
	)
	err := ko.UnmarshalWithConf("", &root, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:           decoder,
			ErrorUnused:          true,
			IgnoreUntaggedFields: true,
			Result:               &root,
			WeaklyTypedInput:     true,
			ZeroFields:           true,
		},
	})
	if err != nil {
		return root, false, errors.Wrap(err, "Decode config")
	}

	if err := root.Validate(); err != nil {
		return root, false, errors.Wrap(err, "Check config")
	}

	return root, isNew, nil
}

// Validate returns BadValueError if any value of <r> is out of range
func (r Root) Validate() error {
	if !lo.Contains([]string{"json", "yaml", "yml"}, strings.ToLower(r.Persist.Format)) {
		return BadValueError{Key: "persist.format", Value: r.Persist.Format, Reason: "should be 'json' or 'yaml'"}
	}
	if r.Persist.BackupCount < UnlimitedBackups {
		reason := "should be 'unlimited', -1 or a non-negative number"
		return BadValueError{Key: "persist.backup_count", Value: r.Persist.BackupCount, Reason: reason}
	}
	if r.Merge.SourceTimeout <= 0 {
		return BadValueError{Key: "merge.source_timeout", Value: r.Merge.SourceTimeout, Reason: "should be positive"}
	}
	if r.Check.MaxWorkers < 1 {
		return BadValueError{Key: "check.max_workers", Value: r.Check.MaxWorkers, Reason: "should be at least 1"}
	}
	return nil
}

// CryptoKey returns passphrase from the environment variable named by Persist.CryptoKeyEnv, or empty string
func (r Root) CryptoKey() string {
	if r.Persist.CryptoKeyEnv == "" {
		return ""
	}
	return os.Getenv(r.Persist.CryptoKeyEnv)
}

// WriteDefault writes default config to <path>, creating parent directories
func WriteDefault(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "Create config directory")
		}
	}
	if err := os.WriteFile(path, defCfgBytes, 0644); err != nil {
		return errors.Wrap(err, "Write default config")
	}
	return nil
}

// NewDefCfg returns default config as written in "default.yaml" file
func NewDefCfg() Root {
	return Root{
		Persist: Persist{
			Format:       "json",
			CodecOptions: map[string]any{"indent": 2},
			BackupCount:  UnlimitedBackups,
			CryptoKeyEnv: "SMARTSETTINGS_KEY",
		},
		Merge: Merge{
			SourceTimeout: 10 * time.Second,
		},
		Check: Check{
			MaxWorkers: 4,
		},
	}
}
