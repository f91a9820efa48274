package ot

// Simplify returns the canonical form of ops.
// Zero-length steps are dropped, adjacent steps of the same kind are merged and a trailing Retain is removed.
// It never modifies ops, and returns nil if nothing is left.
func Simplify(ops []Op) (out []Op) {
	for _, op := range ops {
		if op == nil || op.Len() == 0 {
			continue
		}
		if len(out) > 0 {
			if merged, ok := Merge(out[len(out)-1], op); ok {
				out[len(out)-1] = merged
				continue
			}
		}
		out = append(out, op)
	}

	if len(out) > 0 {
		if _, ok := out[len(out)-1].(Retain); ok {
			out = out[:len(out)-1]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Equal reports whether a and b are the same once simplified.
func Equal(a, b []Op) bool {
	a, b = Simplify(a), Simplify(b)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// BaseLen returns the number of characters ops walks over in its base state.
// A trailing Retain is not needed, so this is the minimum valid base length.
func BaseLen(ops []Op) (n int) {
	for _, op := range ops {
		switch op := op.(type) {
		case Retain:
			n += int(op)
		case Remove:
			n += int(op)
		}
	}
	return n
}
