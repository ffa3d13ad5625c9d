package deps

import (
	"smartsettings/cfg"
	"smartsettings/codec"
	"smartsettings/settings"

	"github.com/sirupsen/logrus"
)

// Global represents global dependencies holder interface
type Global interface {
	Log() *logrus.Logger
	Cfg() cfg.Root
}

// Store represents settings persistence interface
type Store interface {
	Global
	Codec() codec.Codec
	CodecFor(path string) codec.Codec
	CodecByName(format string) (codec.Codec, error)
	SaveToString(v settings.Value, cryptoKey string, opts codec.Options) (string, error)
	LoadFromString(text, cryptoKey string, opts codec.Options) (settings.Value, error)
	LoadFromNamed(name, text, cryptoKey string, opts codec.Options) (settings.Value, error)
	SaveToFile(v settings.Value, path, cryptoKey string, backupCount int, opts codec.Options) error
	LoadFromFile(path, cryptoKey string, def settings.Value, opts codec.Options) (settings.Value, error)
	Backups(path string) ([]string, error)
	Restore(path, backup string) error
}
