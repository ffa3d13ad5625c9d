package command

import (
	"io"

	"smartsettings/cfg"
	"smartsettings/deps"

	"github.com/sirupsen/logrus"
)

// repo represents dependencies holder for this package
type repo struct {
	store deps.Store
	in    io.Reader
	out   io.Writer
}

// NewRepo returns new dependencies holder for this package.
//
// Commands read user answers from <in> and print results to <out>.
func NewRepo(store deps.Store, in io.Reader, out io.Writer) repo {
	return repo{store: store, in: in, out: out}
}

// Log used to satisfy deps.Global interface
func (r repo) Log() *logrus.Logger {
	return r.store.Log()
}

// Cfg used to satisfy deps.Global interface
func (r repo) Cfg() cfg.Root {
	return r.store.Cfg()
}
