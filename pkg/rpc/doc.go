// Package rpc marshals resource properties into the protobuf Struct wire
// form exchanged with the engine, and resolves the outputs the engine sends
// back.
//
// # Wire form
//
// Property bags travel as string-keyed protobuf Structs. Three special
// encodings share the wire with plain user data:
//
//   - A map carrying the reserved signature key (SigKey) is a tagged value:
//     the signature selects asset, archive or secret decoding.
//   - The UnknownValue sentinel string marks a value the engine cannot
//     supply during this run.
//   - Everything else is a plain null/bool/number/string/list/map.
//
// # Marshalling
//
// Marshaler walks a native property graph, awaiting futures and output facts
// as it goes, and produces a wire Struct plus the set of resources each
// top-level property depends on. Unmarshaler walks a wire Struct back into
// native values, rehydrating assets and archives and bubbling secrecy out of
// containers.
//
// # Output resolution
//
// TransferProperties binds a pending (value, known, secret) slot to each
// declared property of a resource before anything is sent to the engine.
// Session.ResolveOutputs reconciles the engine's response with the original
// inputs and delivers a terminal state to every slot exactly once;
// RejectOutputs poisons every slot when resource construction fails.
package rpc
