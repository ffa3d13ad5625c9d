package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

var (
	// ErrDuplicateKind is returned on attempt to register already known variant
	ErrDuplicateKind = errors.New("variant already registered")

	// ErrUnknownKind is returned on attempt to build unregistered variant
	ErrUnknownKind = errors.New("unknown variant")

	// ErrMissingField is the mark of errors returned if a variant is built without required fields
	ErrMissingField = errors.New("required field is missing")
)

// MissingFieldsError represents error thrown if container of a registered variant lacks required fields
type MissingFieldsError struct {
	Kind   string
	Fields []string
}

// Error is used to satisfy golang error interface
func (e MissingFieldsError) Error() string {
	return fmt.Sprintf("%v is missing required fields: %v", e.Kind, strings.Join(e.Fields, ", "))
}

// Variant represents a named specialization of the container with a fixed set of required fields
type Variant struct {
	// Kind is the variant tag which is written along with serialized containers
	Kind string

	// Required lists field names every container of this variant must have
	Required []string

	// Defaults optionally returns fields to initialize new containers with
	Defaults func() []Field
}

// Registry represents a set of known container variants.
//
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	variants map[string]Variant
}

// DefaultRegistry is used by package level functions and by codecs if no registry is given
var DefaultRegistry = NewRegistry()

// NewRegistry returns registry knowing only the base variant
func NewRegistry() *Registry {
	return &Registry{variants: map[string]Variant{BaseKind: {Kind: BaseKind}}}
}

// Register adds <v> to <r>.
//
// Returns ErrDuplicateKind if the variant with the same kind is already registered.
func (r *Registry) Register(v Variant) error {
	if v.Kind == "" {
		return errors.New("variant kind can not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.variants[v.Kind]; ok {
		return errors.Wrapf(ErrDuplicateKind, "Register %q", v.Kind)
	}
	r.variants[v.Kind] = v
	return nil
}

// Lookup returns variant registered as <kind> and true if found
func (r *Registry) Lookup(kind string) (Variant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[kind]
	return v, ok
}

// Kinds returns all registered variant kinds
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.variants)
}

// New returns container of registered variant <kind> initialized with defaults and then with <fields>.
//
// Returns ErrUnknownKind if <kind> is not registered and MissingFieldsError marked with ErrMissingField if required
// fields are absent.
func (r *Registry) New(kind string, fields ...Field) (*Container, error) {
	v, ok := r.Lookup(kind)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "Build %q", kind)
	}
	c := NewKind(kind)
	if v.Defaults != nil {
		for _, f := range v.Defaults() {
			c.Set(f.Name, f.Value.Clone())
		}
	}
	for _, f := range fields {
		c.Set(f.Name, f.Value)
	}
	if err := r.Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if <c> has every field required by its variant.
//
// Returns ErrUnknownKind if variant of <c> is not registered.
func (r *Registry) Validate(c *Container) error {
	v, ok := r.Lookup(c.kind)
	if !ok {
		return errors.Wrapf(ErrUnknownKind, "Validate %q", c.kind)
	}
	missing := lo.Filter(v.Required, func(name string, _ int) bool {
		return !c.Has(name)
	})
	if len(missing) > 0 {
		return errors.Mark(MissingFieldsError{Kind: c.kind, Fields: missing}, ErrMissingField)
	}
	return nil
}

// Register adds <v> to the DefaultRegistry
func Register(v Variant) error {
	return DefaultRegistry.Register(v)
}

// Lookup returns variant registered as <kind> in the DefaultRegistry
func Lookup(kind string) (Variant, bool) {
	return DefaultRegistry.Lookup(kind)
}

// NewVariant returns container of variant <kind> built by the DefaultRegistry
func NewVariant(kind string, fields ...Field) (*Container, error) {
	return DefaultRegistry.New(kind, fields...)
}
