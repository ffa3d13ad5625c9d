package settings

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrTypeMismatch is the mark of errors returned when merging containers of different variants
var ErrTypeMismatch = errors.New("type mismatch")

// MismatchError represents error thrown if merge source variant differs from the target's one
type MismatchError struct {
	Target string
	Source string
}

// Error is used to satisfy golang error interface
func (e MismatchError) Error() string {
	return fmt.Sprintf("Can not merge %v into %v", e.Source, e.Target)
}

// Merge recursively updates <target> with fields of <source> and returns <target>.
//
// Containers and mappings are merged by key, sequences by position, anything else is overwritten with a deep copy
// of the source value. Target sequence items beyond the source length are kept.
//
// Returns MismatchError marked with ErrTypeMismatch if variants of any pair of merged containers differ. In that case
// <target> may be partially updated.
//
// <source> is never modified and shares no data with <target> afterwards.
func Merge(target, source *Container) (*Container, error) {
	if target.kind != source.kind {
		err := MismatchError{Target: target.kind, Source: source.kind}
		return target, errors.Mark(err, ErrTypeMismatch)
	}
	if err := mergeFields(target.fields, source.fields); err != nil {
		return target, err
	}
	return target, nil
}

// Merged returns deep copy of <target> updated with <source>, leaving both untouched
func Merged(target, source *Container) (*Container, error) {
	return Merge(target.Clone(), source)
}

// mergeFields merges <source> map into <target> map by key
func mergeFields(target, source map[string]Value) error {
	for key, srcVal := range source {
		dstVal, ok := target[key]
		if !ok {
			target[key] = srcVal.Clone()
			continue
		}
		merged, err := mergeValue(dstVal, srcVal)
		if err != nil {
			return errors.Wrapf(err, "Merge %q", key)
		}
		target[key] = merged
	}
	return nil
}

// mergeSeq returns <target> items patched with <source> items by position
func mergeSeq(target, source []Value) ([]Value, error) {
	for idx, srcVal := range source {
		if idx >= len(target) {
			target = append(target, srcVal.Clone())
			continue
		}
		merged, err := mergeValue(target[idx], srcVal)
		if err != nil {
			return target, errors.Wrapf(err, "Merge item %v", idx)
		}
		target[idx] = merged
	}
	return target, nil
}

// mergeValue returns <target> merged with <source> if both have the same mergeable kind, or a copy of <source>
func mergeValue(target, source Value) (Value, error) {
	if target.kind != source.kind {
		return source.Clone(), nil
	}
	switch target.kind {
	case Node:
		_, err := Merge(target.c, source.c)
		return target, err
	case Sequence:
		seq, err := mergeSeq(target.seq, source.seq)
		target.seq = seq
		return target, err
	case Mapping:
		return target, mergeFields(target.m, source.m)
	}
	return source.Clone(), nil
}
