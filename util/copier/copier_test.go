package copier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type options struct {
	Format  string
	Values  map[string]any
	Workers []int
}

func TestDeep(t *testing.T) {
	inp := options{Format: "json", Values: map[string]any{"indent": 2}, Workers: []int{1}}

	out, err := Deep(inp)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, inp, out, "copy should be equal to the source")

	inp.Values["indent"] = 4
	inp.Workers[0] = 10
	assert.Exactly(t, 2, out.Values["indent"], "changes to source map should not modify the copy")
	assert.Exactly(t, 1, out.Workers[0], "changes to source slice should not modify the copy")
}

func TestPDeep(t *testing.T) {
	inp := map[string]any{"indent": 2}
	out := PDeep(inp)

	inp["indent"] = 0
	assert.Exactly(t, 2, out["indent"], "changes to source should not modify the copy")
}

func TestTDeep(t *testing.T) {
	inp := []options{{Format: "yaml"}}
	out := TDeep(t, inp)

	inp[0].Format = "json"
	assert.Exactly(t, "yaml", out[0].Format, "changes to source should not modify the copy")
}
