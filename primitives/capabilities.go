package primitives

// MethodContext governs how a caller's execution context propagates into a
// method it calls: Keep carries the caller's own (own_address, caller)
// pair through unchanged, Reset starts the callee with a fresh context,
// and Replace substitutes an explicitly supplied context. Contracts cannot
// forge arbitrary contexts: only the environment resolves one of these
// three outcomes.
type MethodContext int

const (
	MethodContextKeep MethodContext = iota
	MethodContextReset
	MethodContextReplace
)

// EnvState is the environment state visible to a contract call: which
// shard it executes on, its own address, the calling context, and the
// caller's address.
type EnvState struct {
	ShardIndex ShardIndex
	OwnAddress PublicKeyHash
	Context    MethodContext
	Caller     PublicKeyHash
}

// Capabilities is the capability set an environment exposes to a running
// method, in place of inheritance-flavored "extension traits" on an
// environment object: operations are named and passed explicitly rather
// than attached to a context object reachable via virtual dispatch.
type Capabilities interface {
	// Call invokes another method under the context resolved from (state,
	// requested), returning that method's result or an error.
	Call(state EnvState, requested MethodContext, replaceWith *EnvState) ([]byte, error)
	// StateRoot returns the current state root visible to this call.
	StateRoot() Hash
}

// ResolveMethodContext computes the EnvState a callee executes under, given
// the caller's own state, the MethodContext it requested, and (for Replace)
// the context it supplied. Dispatch is table-driven: no method on EnvState
// or Capabilities decides this by virtual call.
func ResolveMethodContext(caller EnvState, requested MethodContext, replaceWith *EnvState) EnvState {
	switch requested {
	case MethodContextKeep:
		return caller
	case MethodContextReset:
		return EnvState{
			ShardIndex: caller.ShardIndex,
			OwnAddress: caller.OwnAddress,
			Context:    MethodContextReset,
			Caller:     caller.OwnAddress,
		}
	case MethodContextReplace:
		if replaceWith == nil {
			return caller
		}
		return *replaceWith
	default:
		return caller
	}
}
