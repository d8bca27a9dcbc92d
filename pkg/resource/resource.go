package resource

import "sync"

// Identity property names. These are assigned through the resource's own
// identity outputs rather than through the property resolution path.
const (
	IdentityURN = "urn"
	IdentityID  = "id"
)

// Resource is a managed entity whose properties cross the wire boundary.
// It owns the urn and id identity outputs, the property-name translators
// applied at that boundary, the declared shape table used for hydration, and
// the registry of property outputs bound at construction.
//
// Including a *Resource in a property graph serializes as the resource's id
// and records the resource as a dependency of the enclosing property.
type Resource struct {
	typ  string
	name string

	urn         *Output
	id          *Output
	urnResolver *Resolver
	idResolver  *Resolver

	inputKey  func(string) string
	outputKey func(string) string
	shapes    map[string]*PropertyType

	mu      sync.Mutex
	outputs map[string]*Output
}

// Option configures a Resource at construction.
type Option func(*Resource)

// WithInputTranslator sets the translator applied to property keys on the
// way to the wire (native name to wire name).
func WithInputTranslator(translate func(string) string) Option {
	return func(r *Resource) {
		r.inputKey = translate
	}
}

// WithOutputTranslator sets the translator applied to property keys coming
// back from the engine (wire name to native name).
func WithOutputTranslator(translate func(string) string) Option {
	return func(r *Resource) {
		r.outputKey = translate
	}
}

// WithShapes sets the declared output shapes, keyed by wire property name.
func WithShapes(shapes map[string]*PropertyType) Option {
	return func(r *Resource) {
		r.shapes = shapes
	}
}

// NewResource creates a resource of the given type and name with pending
// identity outputs. Both identity outputs depend on the resource itself.
func NewResource(typ, name string, opts ...Option) *Resource {
	r := &Resource{
		typ:     typ,
		name:    name,
		outputs: make(map[string]*Output),
	}
	r.urn, r.urnResolver = NewOutput(r)
	r.id, r.idResolver = NewOutput(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Type returns the resource type token.
func (r *Resource) Type() string { return r.typ }

// Name returns the resource's declared name.
func (r *Resource) Name() string { return r.name }

// URN returns the resource's urn identity output.
func (r *Resource) URN() *Output { return r.urn }

// ID returns the resource's id identity output.
func (r *Resource) ID() *Output { return r.id }

// ResolveURN delivers the resource's urn. The urn of a registered resource
// is always known.
func (r *Resource) ResolveURN(urn string) error {
	return r.urnResolver.Fulfill(urn, true, false)
}

// ResolveID delivers the resource's id. known is false during previews of
// resources that do not exist yet.
func (r *Resource) ResolveID(id any, known bool) error {
	return r.idResolver.Fulfill(id, known, false)
}

// RejectIdentity poisons both identity outputs with cause.
func (r *Resource) RejectIdentity(cause error) {
	_ = r.urnResolver.Reject(cause)
	_ = r.idResolver.Reject(cause)
}

// TranslateInputProperty translates a native property name to its wire name.
func (r *Resource) TranslateInputProperty(name string) string {
	if r.inputKey == nil {
		return name
	}
	return r.inputKey(name)
}

// TranslateOutputProperty translates a wire property name to its native
// name.
func (r *Resource) TranslateOutputProperty(name string) string {
	if r.outputKey == nil {
		return name
	}
	return r.outputKey(name)
}

// OutputShape returns the declared shape for the given wire property name,
// or nil if the property has no declared shape.
func (r *Resource) OutputShape(name string) *PropertyType {
	return r.shapes[name]
}

// SetOutput installs a property output under its native name. Outputs are
// installed once, when slots are bound at construction.
func (r *Resource) SetOutput(name string, out *Output) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[name] = out
}

// Output returns the property output installed under the given native name.
func (r *Resource) Output(name string) (*Output, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, ok := r.outputs[name]
	return out, ok
}
