package ot

import (
	"fmt"
)

// Compose combines two sequential operation lists into one.
// Applying the result is the same as applying first and then second.
func Compose(first, second []Op) (out []Op, err error) {
	if err = Validate(first); err != nil {
		return nil, err
	}
	if err = Validate(second); err != nil {
		return nil, err
	}

	var ai, bi int
	var a, b Op

	for {
		if a == nil && ai < len(first) {
			a = first[ai]
			ai++
		}
		if b == nil && bi < len(second) {
			b = second[bi]
			bi++
		}
		if a == nil && b == nil {
			break
		}

		if a != nil && a.Len() == 0 {
			a = nil
			continue
		}
		if b != nil && b.Len() == 0 {
			b = nil
			continue
		}

		// Removed text is gone before second runs, so nothing in second can touch it.
		if rem, ok := a.(Remove); ok {
			out = append(out, rem)
			a = nil
			continue
		}
		// Text inserted by second didn't exist for first.
		if ins, ok := b.(Insert); ok {
			out = append(out, ins)
			b = nil
			continue
		}

		if b == nil {
			out = append(out, a)
			a = nil
			continue
		}
		if a == nil {
			out = append(out, b)
			b = nil
			continue
		}

		n := min(a.Len(), b.Len())
		aHead, aTail := mustSplit(a, n)
		bHead, bTail := mustSplit(b, n)
		a, b = nonEmpty(aTail), nonEmpty(bTail)

		switch aHead.(type) {
		case Retain:
			switch bHead.(type) {
			case Retain:
				out = append(out, aHead)
			case Remove:
				out = append(out, bHead)
			default:
				panic(fmt.Sprintf("compose: unexpected pair %v/%v", aHead, bHead))
			}
		case Insert:
			switch bHead.(type) {
			case Retain:
				out = append(out, aHead)
			case Remove:
				// inserted then removed, cancels out
			default:
				panic(fmt.Sprintf("compose: unexpected pair %v/%v", aHead, bHead))
			}
		default:
			panic(fmt.Sprintf("compose: unexpected pair %v/%v", aHead, bHead))
		}
	}

	return Simplify(out), nil
}

// ComposeNullable is Compose where a nil list stands for no edit.
func ComposeNullable(first, second []Op) ([]Op, error) {
	switch {
	case first != nil && second != nil:
		return Compose(first, second)
	case first != nil:
		return first, nil
	default:
		return second, nil
	}
}

// ComposeMany folds Compose over all lists in order.
func ComposeMany(lists ...[]Op) (out []Op, err error) {
	for _, ops := range lists {
		out, err = Compose(out, ops)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
