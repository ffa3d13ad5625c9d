package settings

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup(BaseKind)
	assert.True(t, ok, "should know the base variant")

	err := r.Register(Variant{
		Kind:     "child",
		Required: []string{"name", "value"},
		Defaults: func() []Field { return []Field{F("value", 0)} },
	})
	assert.NoError(t, err, "should register variant")
	assert.ElementsMatch(t, []string{BaseKind, "child"}, r.Kinds())

	err = r.Register(Variant{Kind: "child"})
	assert.True(t, errors.Is(err, ErrDuplicateKind), "should not register variant twice")

	assert.Error(t, r.Register(Variant{}), "should not register empty kind")

	c, err := r.New("child", F("name", "first child"))
	assert.NoError(t, err, "should build variant with defaults")
	assert.True(t, c.Equal(NewKind("child", F("name", "first child"), F("value", 0))))

	c, err = r.New("child", F("name", "second child"), F("value", 200))
	assert.NoError(t, err)
	assert.True(t, c.Get("value").Equal(IntValue(200)), "fields should overwrite defaults")

	_, err = r.New("parent", F("name", "parent"))
	assert.True(t, errors.Is(err, ErrUnknownKind), "should not build unknown variant")

	err = r.Validate(NewKind("child"))
	assert.True(t, errors.Is(err, ErrMissingField), "should report missing fields")
	var missing MissingFieldsError
	assert.True(t, errors.As(err, &missing))
	assert.Exactly(t, []string{"name", "value"}, missing.Fields)
}

func TestDefaultRegistry(t *testing.T) {
	kind := "registry_test_variant"
	assert.NoError(t, Register(Variant{Kind: kind, Required: []string{"name"}}))

	_, ok := Lookup(kind)
	assert.True(t, ok, "should find registered variant")

	_, err := NewVariant(kind)
	assert.True(t, errors.Is(err, ErrMissingField))

	c, err := NewVariant(kind, F("name", "x"))
	assert.NoError(t, err)
	assert.Exactly(t, kind, c.Kind())
}
