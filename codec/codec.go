package codec

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"smartsettings/settings"
)

var (
	// ErrDecode is the mark of errors returned if text can not be parsed back to settings
	ErrDecode = errors.New("malformed settings text")

	// ErrOption is the mark of errors returned if a formatting option has unexpected type
	ErrOption = errors.New("bad codec option")

	// ErrUnknownFormat is returned if codec name is not known
	ErrUnknownFormat = errors.New("unknown settings format")
)

// Options represents formatting options passed through to a codec.
//
// Codecs ignore keys they do not know.
type Options map[string]any

// IndentOption is the key of the indentation width option
const IndentOption = "indent"

// Int returns integer option <key> or <def> if the option is not set
func (o Options) Int(key string, def int) (int, error) {
	raw, ok := o[key]
	if !ok || raw == nil {
		return def, nil
	}
	switch val := raw.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i, nil
		}
	}
	return def, errors.Mark(errors.Newf("option %q should be an integer, got %v", key, raw), ErrOption)
}

// Codec converts settings values to and from text, preserving container variants
type Codec interface {
	// Name returns codec format name
	Name() string

	// Encode returns text representation of <v>
	Encode(v settings.Value, opts Options) (string, error)

	// Decode returns value parsed from <text>.
	//
	// Returns error marked with ErrDecode if <text> is malformed.
	Decode(text string, opts Options) (settings.Value, error)
}

// ByName returns codec for format <name> ("json", "yaml" or "yml") using variants from <reg>.
//
// If <reg> is nil, settings.DefaultRegistry is used.
func ByName(name string, reg *settings.Registry) (Codec, error) {
	switch strings.ToLower(name) {
	case JSONFormat:
		return NewJSON(reg), nil
	case YAMLFormat, "yml":
		return NewYAML(reg), nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "Get codec %q", name)
}

// ForPath returns codec matching extension of <path> or <fallback> if the extension is not known
func ForPath(path string, fallback Codec, reg *settings.Registry) Codec {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if c, err := ByName(ext, reg); err == nil {
		return c
	}
	return fallback
}

// decodeErr returns <err> marked with ErrDecode and wrapped with <msg>
func decodeErr(err error, msg string) error {
	return errors.Wrap(errors.Mark(err, ErrDecode), msg)
}

// buildContainer returns container of variant <kind> with <fields>, checked against <reg>
func buildContainer(reg *settings.Registry, kind string, fields map[string]settings.Value) (*settings.Container, error) {
	c := settings.NewKind(kind)
	for name, v := range fields {
		c.Set(name, v)
	}
	if err := reg.Validate(c); err != nil {
		return nil, decodeErr(err, "Build container")
	}
	return c, nil
}

func registryOrDefault(reg *settings.Registry) *settings.Registry {
	if reg == nil {
		return settings.DefaultRegistry
	}
	return reg
}
