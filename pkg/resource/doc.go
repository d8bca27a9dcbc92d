// Package resource defines the native-side value model that the RPC
// marshalling layer operates on.
//
// # Overview
//
// Property values flowing into and out of the engine are built from a small
// polymorphic alphabet:
//
//   - Plain Go scalars, []any lists, and map[string]any maps
//   - Unknown: a marker for values the engine cannot supply during this run
//   - Future: a value that resolves asynchronously to another value
//   - Output: a value paired with independently-delivered known/secret facts
//     and the set of resources it depends on
//   - Secret: a wrapper marking its element as sensitive
//   - Asset and Archive: file, string, and remote content references
//   - PropertyRecord: a typed record that renders itself to wire-keyed values
//
// # Outputs and Resolvers
//
// Output is the read side of a single-assignment slot holding a (value,
// known, secret) triple. Resolver is the write side: the triple transitions
// exactly once from pending to either fulfilled or poisoned, and the
// transition covers all three facts atomically. Readers block until the slot
// is terminal; a poisoned slot surfaces the same cause to every reader of
// every fact.
//
// # Resources
//
// Resource carries the identity outputs (urn, id), the property-name
// translators used when crossing the wire boundary, the declared shape table
// consumed by output hydration, and the registry of property outputs bound at
// construction time.
package resource
