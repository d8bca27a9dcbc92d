package resource

import "context"

// Future is a property value that becomes available asynchronously. Awaiting
// may yield another Future; consumers are expected to re-await until a
// concrete value surfaces.
type Future interface {
	// Await blocks until the value is available or ctx is done.
	Await(ctx context.Context) (any, error)
}

// FutureFunc adapts a function to the Future interface.
type FutureFunc func(ctx context.Context) (any, error)

// Await implements Future.
func (f FutureFunc) Await(ctx context.Context) (any, error) {
	return f(ctx)
}

// ResolvedFuture returns a Future that immediately yields v.
func ResolvedFuture(v any) Future {
	return FutureFunc(func(context.Context) (any, error) {
		return v, nil
	})
}

// PropertyRecord is implemented by typed records that can render themselves
// to a property map. The returned keys are already final wire names, so the
// marshaller does not translate them again.
type PropertyRecord interface {
	PropertyValues() map[string]any
}

// Secret marks its element as sensitive. The unmarshaller produces Secret
// wrappers for secret-signed wire values; container secrecy bubbles up one
// wrapper per container level.
type Secret struct {
	// Element is the wrapped value.
	Element any
}

// IsSecret reports whether v is a Secret wrapper, without recursing.
func IsSecret(v any) bool {
	_, ok := v.(Secret)
	return ok
}

// UnwrapSecret strips a Secret wrapper if present, otherwise returns v
// unmodified.
func UnwrapSecret(v any) any {
	if s, ok := v.(Secret); ok {
		return s.Element
	}
	return v
}
