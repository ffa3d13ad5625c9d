package persist

import (
	"testing"
	"time"

	"smartsettings/cfg"
	"smartsettings/codec"
	"smartsettings/deps"
	"smartsettings/settings"
	"smartsettings/util/logger"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// newDefRepo returns new repository initialized with defaults
func newDefRepo() repo {
	return NewRepo(logger.New(logrus.DebugLevel), cfg.NewDefCfg())
}

// stepClock returns clock which time advances by <step> on every call, starting from <start>
func stepClock(start time.Time, step time.Duration) func() time.Time {
	at := start.Add(-step)
	return func() time.Time {
		at = at.Add(step)
		return at
	}
}

func TestNewRepo(t *testing.T) {
	log := logger.New(logrus.DebugLevel)
	r := NewRepo(log, cfg.NewDefCfg())

	var global deps.Global = r
	var _ deps.Store = r
	assert.Same(t, log, global.Log(), "should keep logger")
	assert.Exactly(t, cfg.NewDefCfg(), global.Cfg(), "should keep config")
	assert.Exactly(t, codec.JSONFormat, r.Codec().Name(), "should take codec from config")

	yamlCfg := cfg.NewDefCfg()
	yamlCfg.Persist.Format = "yml"
	assert.Exactly(t, codec.YAMLFormat, NewRepo(log, yamlCfg).Codec().Name())

	badCfg := cfg.NewDefCfg()
	badCfg.Persist.Format = "toml"
	assert.Exactly(t, codec.JSONFormat, NewRepo(log, badCfg).Codec().Name(), "should fall back to JSON")
}

func TestWithCodec(t *testing.T) {
	r := newDefRepo()
	yamlRepo := r.WithCodec(codec.NewYAML(nil))

	assert.Exactly(t, codec.YAMLFormat, yamlRepo.Codec().Name(), "should use given codec")
	assert.Exactly(t, codec.JSONFormat, r.Codec().Name(), "should not modify the source")
}

func TestWithRegistry(t *testing.T) {
	reg := settings.NewRegistry()
	assert.NoError(t, reg.Register(settings.Variant{Kind: "profile", Required: []string{"name"}}))

	r := newDefRepo().WithCodec(codec.NewYAML(nil)).WithRegistry(reg)
	assert.Exactly(t, codec.YAMLFormat, r.Codec().Name(), "should keep codec format")

	v, err := r.LoadFromString("!profile\nname: work\n", "", nil)
	assert.NoError(t, err, "should decode variant from given registry")
	c, _ := v.Container()
	assert.Exactly(t, "profile", c.Kind())

	_, err = newDefRepo().WithCodec(codec.NewYAML(nil)).LoadFromString("!profile\nname: work\n", "", nil)
	assert.True(t, errors.Is(err, codec.ErrDecode), "default registry should not know the variant")
}

func TestCodecFor(t *testing.T) {
	reg := settings.NewRegistry()
	assert.NoError(t, reg.Register(settings.Variant{Kind: "profile", Required: []string{"name"}}))
	r := newDefRepo().WithRegistry(reg)

	assert.Exactly(t, codec.YAMLFormat, r.CodecFor("settings.yml").Name(), "should choose codec by extension")
	assert.Exactly(t, codec.JSONFormat, r.CodecFor("settings.conf").Name(), "should fall back to repo codec")

	_, err := r.CodecFor("settings.yaml").Decode("!profile\nname: work\n", nil)
	assert.NoError(t, err, "should decode variant from repo registry")

	c, err := r.CodecByName("yaml")
	assert.NoError(t, err)
	_, err = c.Decode("!profile\nname: work\n", nil)
	assert.NoError(t, err, "named codec should decode variant from repo registry")

	_, err = r.CodecByName("toml")
	assert.True(t, errors.Is(err, codec.ErrUnknownFormat), "should fail on unknown format")
}
