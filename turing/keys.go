package turing

// AllKeys returns the Q*Sigma keys of a complete TransitionFunction over q
// states, in the canonical order the Enumerator fills them: state-major,
// symbol-minor.
func AllKeys(q uint8) []Key {
	keys := make([]Key, 0, int(q)*int(Sigma))
	for s := State(0); s < State(q); s++ {
		for sym := Symbol(0); sym < Symbol(Sigma); sym++ {
			keys = append(keys, Key{State: s, Symbol: sym})
		}
	}
	return keys
}
