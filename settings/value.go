package settings

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ValueKind represents kind of the value stored in a settings field
type ValueKind uint8

const (
	Null ValueKind = iota
	Bool
	Int
	Float
	String
	Sequence
	Mapping
	Node
)

// String returns human readable name of <k>
func (k ValueKind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	case Node:
		return "container"
	}
	return "unknown"
}

// Value represents a field value: a scalar, a sequence of values, a mapping of values or a nested container.
//
// The zero Value is Null.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
	c    *Container
}

// NullValue returns null value
func NullValue() Value {
	return Value{}
}

// BoolValue returns boolean value
func BoolValue(b bool) Value {
	return Value{kind: Bool, b: b}
}

// IntValue returns integer value
func IntValue(i int64) Value {
	return Value{kind: Int, i: i}
}

// FloatValue returns floating point value
func FloatValue(f float64) Value {
	return Value{kind: Float, f: f}
}

// StringValue returns string value
func StringValue(s string) Value {
	return Value{kind: String, s: s}
}

// SeqValue returns sequence value holding <items>.
//
// The slice is owned by the value afterwards.
func SeqValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Sequence, seq: items}
}

// MapValue returns mapping value holding <m>.
//
// The map is owned by the value afterwards.
func MapValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: Mapping, m: m}
}

// NodeValue returns value holding container <c>. Nil <c> gives null value.
func NodeValue(c *Container) Value {
	if c == nil {
		return Value{}
	}
	return Value{kind: Node, c: c}
}

// Of converts native Go value <v> to Value.
//
// Supported: nil, bool, signed and unsigned integers, floats, string, []any, []Value, map[string]any,
// map[string]Value, *Container and Value itself.
func Of(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return val, nil
	case *Container:
		return NodeValue(val), nil
	case bool:
		return BoolValue(val), nil
	case string:
		return StringValue(val), nil
	case int:
		return IntValue(int64(val)), nil
	case int8:
		return IntValue(int64(val)), nil
	case int16:
		return IntValue(int64(val)), nil
	case int32:
		return IntValue(int64(val)), nil
	case int64:
		return IntValue(val), nil
	case uint8:
		return IntValue(int64(val)), nil
	case uint16:
		return IntValue(int64(val)), nil
	case uint32:
		return IntValue(int64(val)), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return Value{}, errors.Newf("unsigned integer %v overflows int64", val)
		}
		return IntValue(int64(val)), nil
	case uint64:
		if val > math.MaxInt64 {
			return Value{}, errors.Newf("unsigned integer %v overflows int64", val)
		}
		return IntValue(int64(val)), nil
	case float32:
		return FloatValue(float64(val)), nil
	case float64:
		return FloatValue(val), nil
	case []Value:
		return SeqValue(val...), nil
	case []any:
		items := make([]Value, 0, len(val))
		for idx, item := range val {
			itemVal, err := Of(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "Convert item %v", idx)
			}
			items = append(items, itemVal)
		}
		return SeqValue(items...), nil
	case map[string]Value:
		return MapValue(val), nil
	case map[string]any:
		m := make(map[string]Value, len(val))
		for key, item := range val {
			itemVal, err := Of(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "Convert key %q", key)
			}
			m[key] = itemVal
		}
		return MapValue(m), nil
	}
	return Value{}, errors.Newf("unsupported value type %v", reflect.TypeOf(v))
}

// MustOf is like Of but panics if <v> can not be converted
func MustOf(v any) Value {
	out, err := Of(v)
	if err != nil {
		panic(err)
	}
	return out
}

// Kind returns kind of <v>
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull returns true if <v> is null
func (v Value) IsNull() bool {
	return v.kind == Null
}

// Bool returns boolean stored in <v> and true if <v> is a boolean
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == Bool
}

// Int returns integer stored in <v> and true if <v> is an integer
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == Int
}

// Float returns number stored in <v> and true if <v> is a float or an integer
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case Float:
		return v.f, true
	case Int:
		return float64(v.i), true
	}
	return 0, false
}

// Str returns string stored in <v> and true if <v> is a string
func (v Value) Str() (string, bool) {
	return v.s, v.kind == String
}

// Seq returns items of <v> and true if <v> is a sequence.
//
// The returned slice is shared with <v>.
func (v Value) Seq() ([]Value, bool) {
	return v.seq, v.kind == Sequence
}

// Map returns mapping of <v> and true if <v> is a mapping.
//
// The returned map is shared with <v>.
func (v Value) Map() (map[string]Value, bool) {
	return v.m, v.kind == Mapping
}

// Container returns container stored in <v> and true if <v> holds a container
func (v Value) Container() (*Container, bool) {
	return v.c, v.kind == Node
}

// Clone returns deep copy of <v>
func (v Value) Clone() Value {
	switch v.kind {
	case Sequence:
		items := make([]Value, len(v.seq))
		for idx, item := range v.seq {
			items[idx] = item.Clone()
		}
		return Value{kind: Sequence, seq: items}
	case Mapping:
		m := make(map[string]Value, len(v.m))
		for key, item := range v.m {
			m[key] = item.Clone()
		}
		return Value{kind: Mapping, m: m}
	case Node:
		return Value{kind: Node, c: v.c.Clone()}
	}
	return v
}

// Equal returns true if <v> and <other> are structurally equal.
//
// Integers and floats are compared by numeric value.
func (v Value) Equal(other Value) bool {
	if isNumber(v.kind) && isNumber(other.kind) {
		if v.kind == Int && other.kind == Int {
			return v.i == other.i
		}
		a, _ := v.Float()
		b, _ := other.Float()
		return a == b
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == other.b
	case String:
		return v.s == other.s
	case Sequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for idx := range v.seq {
			if !v.seq[idx].Equal(other.seq[idx]) {
				return false
			}
		}
		return true
	case Mapping:
		return mapsEqual(v.m, other.m)
	case Node:
		return v.c.Equal(other.c)
	}
	return false
}

// Interface returns <v> converted to native Go values.
//
// Containers are converted to map[string]any with the additional KindKey entry.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Sequence:
		out := make([]any, len(v.seq))
		for idx, item := range v.seq {
			out[idx] = item.Interface()
		}
		return out
	case Mapping:
		out := make(map[string]any, len(v.m))
		for key, item := range v.m {
			out[key] = item.Interface()
		}
		return out
	case Node:
		out := make(map[string]any, len(v.c.fields)+1)
		for key, item := range v.c.fields {
			out[key] = item.Interface()
		}
		out[KindKey] = v.c.kind
		return out
	}
	return nil
}

// String returns representation of <v> similar to a literal
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.b))
	case Int:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		sb.WriteString(FormatFloat(v.f))
	case String:
		sb.WriteString(strconv.Quote(v.s))
	case Sequence:
		sb.WriteByte('[')
		for idx, item := range v.seq {
			if idx > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	case Mapping:
		writeFields(sb, v.m)
	case Node:
		v.c.write(sb)
	}
}

// FormatFloat returns shortest representation of <f> which always reads back as a float
func FormatFloat(f float64) string {
	out := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return out
	}
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out
}

func writeFields(sb *strings.Builder, m map[string]Value) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sb.WriteByte('{')
	for idx, key := range keys {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%q: ", key))
		m[key].write(sb)
	}
	sb.WriteByte('}')
}

func mapsEqual(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for key, item := range a {
		otherItem, ok := b[key]
		if !ok || !item.Equal(otherItem) {
			return false
		}
	}
	return true
}

func isNumber(k ValueKind) bool {
	return k == Int || k == Float
}
