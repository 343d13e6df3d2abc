package reconcile

// Action is what the reconciler does with one depth.
type Action int

const (
	// Reuse keeps the existing instance untouched.
	Reuse Action = iota

	// Update keeps the existing instance and passes it new parameters.
	Update

	// Rebuild replaces the existing instance with a new one.
	Rebuild
)

func (a Action) String() string {
	switch a {
	case Reuse:
		return "reuse"
	case Update:
		return "update"
	case Rebuild:
		return "rebuild"
	default:
		return "unknown"
	}
}

// ParamChange selects how a depth whose only difference is its
// parameter values is handled.
type ParamChange int

const (
	// ParamUpdate keeps the instance and calls OnChange.
	ParamUpdate ParamChange = iota

	// ParamRemount rebuilds the instance.
	ParamRemount
)

// ParseParamChange maps "update" and "remount" to a policy.
func ParseParamChange(s string) (ParamChange, bool) {
	switch s {
	case "", "update":
		return ParamUpdate, true
	case "remount":
		return ParamRemount, true
	}
	return ParamUpdate, false
}

// Decide picks the action for one depth. existing is nil when the
// previous chain is shorter than the target chain.
func Decide(existing, target *Layer, detached bool, policy ParamChange) Action {
	if detached || existing == nil || existing.Instance == nil || existing.failed {
		return Rebuild
	}
	if existing.Class != target.Class {
		return Rebuild
	}
	if existing.Path() == target.Path() {
		return Reuse
	}
	if policy == ParamUpdate && existing.Node == target.Node {
		return Update
	}
	return Rebuild
}
