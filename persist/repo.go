package persist

import (
	"time"

	"smartsettings/cfg"
	"smartsettings/codec"
	"smartsettings/settings"

	"github.com/sirupsen/logrus"
)

// repo represents dependencies holder for this package
type repo struct {
	log   *logrus.Logger
	cfg   cfg.Root
	codec codec.Codec
	reg   *settings.Registry
	now   func() time.Time
}

// NewRepo returns new dependencies holder for this package.
//
// Codec is chosen by persist.format value of <cfg>, variants are looked up in settings.DefaultRegistry.
func NewRepo(log *logrus.Logger, cfg cfg.Root) repo {
	c, err := codec.ByName(cfg.Persist.Format, settings.DefaultRegistry)
	if err != nil {
		log.Warnf("%v, using %v", err, codec.JSONFormat)
		c = codec.NewJSON(settings.DefaultRegistry)
	}
	return repo{log: log, cfg: cfg, codec: c, reg: settings.DefaultRegistry, now: time.Now}
}

// Log used to satisfy deps.Global interface
func (r repo) Log() *logrus.Logger {
	return r.log
}

// Cfg used to satisfy deps.Global interface
func (r repo) Cfg() cfg.Root {
	return r.cfg
}

// Codec returns codec used for strings and files with unknown extension
func (r repo) Codec() codec.Codec {
	return r.codec
}

// CodecFor returns codec matching extension of <path> or codec of <r> if the extension is unknown
func (r repo) CodecFor(path string) codec.Codec {
	return codec.ForPath(path, r.codec, r.reg)
}

// CodecByName returns codec for <format> reconstructing variants from registry of <r>
func (r repo) CodecByName(format string) (codec.Codec, error) {
	return codec.ByName(format, r.reg)
}

// WithCodec returns copy of <r> using codec <c> for strings and files with unknown extension
func (r repo) WithCodec(c codec.Codec) repo {
	r.codec = c
	return r
}

// WithRegistry returns copy of <r> reconstructing variants from <reg>.
//
// Codec of <r> is recreated with the same format.
func (r repo) WithRegistry(reg *settings.Registry) repo {
	r.reg = reg
	if c, err := codec.ByName(r.codec.Name(), reg); err == nil {
		r.codec = c
	}
	return r
}

// withClock returns copy of <r> taking backup timestamps from <now>
func (r repo) withClock(now func() time.Time) repo {
	r.now = now
	return r
}
