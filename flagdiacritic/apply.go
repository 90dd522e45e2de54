package flagdiacritic

// Apply executes the compiled flag operation at local index i against
// state, returning (accepted, newState) per the operator table of spec
// §4.3. On rejection newState is returned unchanged from state (callers
// that need the "attempted" value for NEGATIVE-strategy bookkeeping should
// use AttemptedResult instead).
func (e *Engine) Apply(i int, state State) (accepted bool, newState State) {
	op := e.ops[i]
	lo, hi := e.offsets[op.Feature-1], e.offsets[op.Feature]
	cur := state.field(lo, hi)
	v := int64(op.Value)

	switch op.Op {
	case Positive:
		return true, state.withField(lo, hi, v)
	case Negative:
		return true, state.withField(lo, hi, -v)
	case Clear:
		return true, state.withField(lo, hi, 0)
	case Require:
		if v == 0 {
			return cur != 0, state
		}
		return cur == v, state
	case Disallow:
		if v == 0 {
			return cur == 0, state
		}
		return cur != v, state
	case Unification:
		if cur == 0 || cur == v || (cur < 0 && -cur != v) {
			return true, state.withField(lo, hi, v)
		}
		return false, state
	default:
		return false, state
	}
}

// AttemptedResult behaves like Apply but always returns the state that
// would result if the operation succeeded, alongside whether it actually
// would be accepted. The NEGATIVE lookup strategy needs this: on
// rejection it still descends using the "attempted" new state.
func (e *Engine) AttemptedResult(i int, state State) (accepted bool, attempted State) {
	op := e.ops[i]
	lo, hi := e.offsets[op.Feature-1], e.offsets[op.Feature]
	v := int64(op.Value)

	accepted, newState := e.Apply(i, state)
	if accepted {
		return true, newState
	}
	switch op.Op {
	case Require, Disallow:
		// R/D never mutate state even when they would accept; "attempted"
		// is simply the unchanged state.
		return false, state
	case Unification:
		return false, state.withField(lo, hi, v)
	default:
		return false, state
	}
}
