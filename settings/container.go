package settings

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// BaseKind is the kind tag of a plain container
const BaseKind = "settings"

// KindKey is the key holding container kind in the output of Value.Interface()
const KindKey = "@kind"

// ErrFieldNotFound is returned by Container.Field if the field does not exist
var ErrFieldNotFound = errors.New("field not found")

// Field represents a named value used to build a container
type Field struct {
	Name  string
	Value Value
}

// F returns field named <name> holding <v> converted with MustOf.
//
// Panics if <v> type is not supported.
func F(name string, v any) Field {
	return Field{Name: name, Value: MustOf(v)}
}

// Container represents a settings node: a set of uniquely named fields tagged with a variant kind
type Container struct {
	kind   string
	fields map[string]Value
}

// New returns base kind container initialized with <fields>.
//
// Later fields overwrite earlier ones with the same name.
func New(fields ...Field) *Container {
	return NewKind(BaseKind, fields...)
}

// NewKind returns container of variant <kind> initialized with <fields>, bypassing the registry.
//
// Use Registry.New to apply defaults and check required fields.
func NewKind(kind string, fields ...Field) *Container {
	c := &Container{kind: kind, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		c.fields[f.Name] = f.Value
	}
	return c
}

// Kind returns variant tag of <c>
func (c *Container) Kind() string {
	return c.kind
}

// Len returns amount of fields in <c>
func (c *Container) Len() int {
	return len(c.fields)
}

// Names returns sorted field names of <c>
func (c *Container) Names() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has returns true if <c> has field <name>
func (c *Container) Has(name string) bool {
	_, ok := c.fields[name]
	return ok
}

// Get returns value of field <name> or null value if there is no such field
func (c *Container) Get(name string) Value {
	return c.fields[name]
}

// Field returns value of field <name>.
//
// Returns ErrFieldNotFound if there is no such field.
func (c *Container) Field(name string) (Value, error) {
	v, ok := c.fields[name]
	if !ok {
		return Value{}, errors.Wrapf(ErrFieldNotFound, "%v has no field %q", c.kind, name)
	}
	return v, nil
}

// Set adds or overwrites field <name> with <v>
func (c *Container) Set(name string, v Value) {
	c.fields[name] = v
}

// SetAny is like Set but converts <v> with Of
func (c *Container) SetAny(name string, v any) error {
	val, err := Of(v)
	if err != nil {
		return errors.Wrapf(err, "Set field %q", name)
	}
	c.fields[name] = val
	return nil
}

// Delete removes field <name> from <c> if it exists
func (c *Container) Delete(name string) {
	delete(c.fields, name)
}

// Clone returns deep copy of <c>
func (c *Container) Clone() *Container {
	out := &Container{kind: c.kind, fields: make(map[string]Value, len(c.fields))}
	for name, v := range c.fields {
		out.fields[name] = v.Clone()
	}
	return out
}

// Equal returns true if <c> and <other> have the same kind, the same field names and equal field values
func (c *Container) Equal(other *Container) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.kind != other.kind {
		return false
	}
	return mapsEqual(c.fields, other.fields)
}

// Merge recursively updates <c> with fields of <source>, see Merge
func (c *Container) Merge(source *Container) (*Container, error) {
	return Merge(c, source)
}

// String returns representation of <c> in form of kind{"field": value, ...}
func (c *Container) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c *Container) write(sb *strings.Builder) {
	sb.WriteString(c.kind)
	writeFields(sb, c.fields)
}
