package rpc

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/husains/pulumi/pkg/resource"
)

// TransferProperties binds a pending output slot to every declared property
// name except the identity properties, installs each output on the resource
// under its native name, and returns the resolvers keyed the same way.
//
// Binding happens at resource construction, before any exchange with the
// engine: when the engine's response eventually arrives, property names are
// translated to native naming first and *that* name indexes the resolvers.
func TransferProperties(res *resource.Resource, names []string) map[string]*resource.Resolver {
	resolvers := make(map[string]*resource.Resolver)
	for _, name := range names {
		if name == resource.IdentityID || name == resource.IdentityURN {
			// Identity properties resolve through the resource itself.
			continue
		}
		out, resolver := resource.NewOutput(res)
		resolvers[name] = resolver
		res.SetOutput(name, out)
		log.Debug().Str("property", name).Msg("Bound output slot")
	}
	return resolvers
}

// ResolveOutputs reconciles the engine's returned outputs with the
// originally-submitted inputs and delivers a terminal state to every bound
// resolver exactly once.
//
// The engine's outputs are authoritative. Outside previews (or whenever
// legacy apply is enabled), input properties the engine returned no final
// value for are backfilled from the original inputs. Engine keys with no
// bound resolver are skipped deliberately: they were registered through a
// different path, the caller may already observe their values, and
// overwriting them at this asynchronous point would race. Resolvers whose
// property is absent altogether fulfil to null, known only when this run is
// an actual apply.
func (s *Session) ResolveOutputs(ctx context.Context, res *resource.Resource, inputs, outputs *structpb.Struct, resolvers map[string]*resource.Resolver) error {
	// Resolution runs on the engine-response path. If the run was cancelled
	// before the response arrived, poison every slot so blocked readers
	// observe the cancellation instead of waiting forever.
	if err := ctx.Err(); err != nil {
		RejectOutputs(resolvers, err)
		return err
	}

	unmarshaler := &Unmarshaler{Session: s}

	decoded, err := unmarshaler.UnmarshalProperties(outputs)
	if err != nil {
		return err
	}
	outProps, ok := decoded.(map[string]any)
	if !ok {
		return resource.NewProtocolError("engine outputs are not a property bag")
	}

	// Combined property state: outputs first, then input backfill. Hydration
	// shapes are looked up by the wire key, before translation.
	all := make(map[string]any)
	for key, value := range outProps {
		translated := res.TranslateOutputProperty(key)
		all[translated] = TranslateOutputProperties(res, value, res.OutputShape(key))
		log.Debug().Str("from", key).Str("to", translated).Msg("Translated incoming output property")
	}

	if !s.IsDryRun() || s.IsLegacyApplyEnabled() {
		for key, wire := range inputs.GetFields() {
			translated := res.TranslateOutputProperty(key)
			if _, have := all[translated]; have {
				continue
			}
			// The engine returned no final value for this input property;
			// the value the user passed in stands.
			native, err := unmarshaler.UnmarshalPropertyValue(wire)
			if err != nil {
				return err
			}
			all[translated] = TranslateOutputProperties(res, native, res.OutputShape(key))
		}
	}

	for key, value := range all {
		if key == resource.IdentityID || key == resource.IdentityURN {
			continue
		}

		resolver, ok := resolvers[key]
		if !ok {
			log.Debug().Str("property", key).Msg("No resolver for engine output property; skipping")
			continue
		}

		secret := false
		if resource.IsSecret(value) {
			secret = true
			value = resource.UnwrapSecret(value)
		}

		if !s.IsDryRun() {
			// An actual apply: the value is final.
			if err := resolver.Fulfill(value, true, secret); err != nil {
				return err
			}
			continue
		}
		// Previewing: claim the value only if the engine produced one.
		if err := resolver.Fulfill(value, value != nil, secret); err != nil {
			return err
		}
	}

	// Properties absent from the combined state, such as optional outputs the
	// engine chose not to return, resolve to null.
	for key, resolver := range resolvers {
		if _, have := all[key]; have {
			continue
		}
		if err := resolver.Fulfill(nil, !s.IsDryRun(), false); err != nil {
			return err
		}
	}

	return nil
}

// RejectOutputs poisons every resolver with cause, typically because the
// resource they belong to failed to construct. Every reader of any of the
// poisoned outputs' facts observes the same cause.
func RejectOutputs(resolvers map[string]*resource.Resolver, cause error) {
	for name, resolver := range resolvers {
		log.Debug().Str("property", name).Err(cause).Msg("Poisoning output slot")
		if err := resolver.Reject(cause); err != nil {
			log.Warn().Str("property", name).Err(err).Msg("Output slot already terminal; cause not delivered")
		}
	}
}
