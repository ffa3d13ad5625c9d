package settings

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestMergeScalars(t *testing.T) {
	settings := New(F("name", "settings"), F("value", 100))
	newSettings := New(F("name", "new_settings"), F("value", 200))

	out, err := Merge(settings, newSettings)
	assert.NoError(t, err, "should not return error")
	assert.Same(t, settings, out, "should return the target")
	assert.True(t, settings.Equal(newSettings), "scalar fields should be overwritten")
}

func TestMergeMismatch(t *testing.T) {
	target := New(F("name", "settings"))
	source := NewKind("child", F("name", "child"))

	_, err := Merge(target, source)
	assert.Error(t, err, "should fail on different variants")
	assert.True(t, errors.Is(err, ErrTypeMismatch), "should be marked as type mismatch")
	var mismatch MismatchError
	assert.True(t, errors.As(err, &mismatch), "should be mismatch error")
	assert.Exactly(t, MismatchError{Target: BaseKind, Source: "child"}, mismatch)
	assert.True(t, target.Get("name").Equal(StringValue("settings")), "should not modify the target")

	target = New(F("sub", NewKind("a", F("x", 1))))
	source = New(F("sub", NewKind("b", F("x", 2))))
	_, err = target.Merge(source)
	assert.True(t, errors.Is(err, ErrTypeMismatch), "should fail on nested variant mismatch")
	assert.Contains(t, err.Error(), `"sub"`, "should name the field")
}

func TestMergeNested(t *testing.T) {
	target := New(
		F("sub", New(F("a", 1), F("b", 2))),
		F("map", map[string]any{"a": 1, "nested": map[string]any{"x": 1, "y": 2}}),
		F("kept", "value"),
	)
	source := New(
		F("sub", New(F("b", 20), F("c", 30))),
		F("map", map[string]any{"nested": map[string]any{"y": 20}, "b": []any{1}}),
		F("added", 1.5),
	)

	_, err := Merge(target, source)
	assert.NoError(t, err)

	expected := New(
		F("sub", New(F("a", 1), F("b", 20), F("c", 30))),
		F("map", map[string]any{"a": 1, "b": []any{1}, "nested": map[string]any{"x": 1, "y": 20}}),
		F("kept", "value"),
		F("added", 1.5),
	)
	assert.True(t, expected.Equal(target), "should merge by key: %v", target)
}

func TestMergeSequenceAppend(t *testing.T) {
	target := New(F("list", []any{New(F("name", "x"), F("keep", true))}))
	source := New(F("list", []any{New(F("name", "a")), "b", "c"}))

	_, err := Merge(target, source)
	assert.NoError(t, err)

	expected := New(F("list", []any{New(F("name", "a"), F("keep", true)), "b", "c"}))
	assert.True(t, expected.Equal(target), "should merge position 0 and append the rest: %v", target)
}

func TestMergeSequenceTail(t *testing.T) {
	target := New(F("list", []any{1, []any{1, 2}, "tail"}))
	source := New(F("list", []any{10}))

	_, err := Merge(target, source)
	assert.NoError(t, err)

	expected := New(F("list", []any{10, []any{1, 2}, "tail"}))
	assert.True(t, expected.Equal(target), "should keep target items beyond source length: %v", target)

	target = New(F("list", []any{[]any{1, 2, 3}, map[string]any{"a": 1}}))
	source = New(F("list", []any{[]any{9}, map[string]any{"b": 2}}))
	_, err = Merge(target, source)
	assert.NoError(t, err)
	expected = New(F("list", []any{[]any{9, 2, 3}, map[string]any{"a": 1, "b": 2}}))
	assert.True(t, expected.Equal(target), "should merge nested sequences and mappings by kind: %v", target)
}

func TestMergeKindChange(t *testing.T) {
	target := New(F("a", []any{1}), F("b", map[string]any{"x": 1}), F("c", New()), F("d", 1))
	source := New(F("a", "str"), F("b", []any{2}), F("c", 3), F("d", map[string]any{"y": 2}))

	_, err := Merge(target, source)
	assert.NoError(t, err, "should not fail on different value kinds")
	assert.True(t, source.Equal(target), "different kinds should be replaced: %v", target)
}

func TestMergeDeepCopy(t *testing.T) {
	target := New()
	source := New(F("sub", New(F("v", 1))), F("list", []any{[]any{1}}), F("map", map[string]any{"k": 1}))
	sourceOriginal := source.Clone()

	_, err := Merge(target, source)
	assert.NoError(t, err)
	assert.True(t, sourceOriginal.Equal(source), "should not modify the source")

	sub, _ := source.Get("sub").Container()
	sub.Set("v", IntValue(2))
	list, _ := source.Get("list").Seq()
	list[0] = StringValue("changed")
	m, _ := source.Get("map").Map()
	m["k"] = IntValue(2)

	assert.True(t, sourceOriginal.Equal(target), "target should share no data with the source")
}

func TestMergeSelf(t *testing.T) {
	c := New(F("name", "x"), F("sub", New(F("v", 1))), F("list", []any{1, []any{2}}), F("map", map[string]any{"k": 1}))
	original := c.Clone()

	_, err := Merge(c, c)
	assert.NoError(t, err)
	assert.True(t, original.Equal(c), "merging into itself should produce an equal container")
}

func TestMerged(t *testing.T) {
	target := New(F("v", 1))
	source := New(F("v", 2), F("w", 3))

	out, err := Merged(target, source)
	assert.NoError(t, err)
	assert.NotSame(t, target, out, "should return copy")
	assert.True(t, target.Equal(New(F("v", 1))), "should not modify the target")
	assert.True(t, out.Equal(source))
}
