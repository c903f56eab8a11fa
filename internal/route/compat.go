package route

import "strings"

// IsCompatible reports whether two routes agree on every resource kind they
// both bind. Routes sharing no kinds are compatible. The relation is
// symmetric but not transitive.
func IsCompatible(a, b Definition) bool {
	for _, ra := range a.Resources {
		inst, ok := b.Instance(ra.Kind)
		if !ok {
			continue
		}
		if !strings.EqualFold(ra.Instance, inst) {
			return false
		}
	}
	return true
}

// SharesBinding reports whether the routes bind at least one common kind to
// the same instance.
func SharesBinding(a, b Definition) bool {
	for _, ra := range a.Resources {
		if inst, ok := b.Instance(ra.Kind); ok && strings.EqualFold(ra.Instance, inst) {
			return true
		}
	}
	return false
}

// Classify computes the compatibility of candidate against the active set.
func Classify(candidate Definition, active []Definition) Compatibility {
	if len(active) == 0 {
		return Unknown
	}

	compatible := 0
	shared := false
	for _, a := range active {
		if IsCompatible(candidate, a) {
			compatible++
		} else if SharesBinding(candidate, a) {
			shared = true
		}
	}

	switch {
	case compatible == len(active):
		return Full
	case compatible > 0 || shared:
		return Partial
	default:
		return None
	}
}
