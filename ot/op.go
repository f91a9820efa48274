// Package ot implements operational transformation over linear text.
//
// An operation list walks the base text from left to right: Retain skips over
// characters, Remove deletes them and Insert adds new text at the current
// position. Lengths are always counted in runes.
package ot

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

var (
	// ErrInvalidOperation is returned for a value that is not a valid Insert, Retain or Remove.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidOffset is returned when splitting outside an operation.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrOutOfRange is returned when an operation list walks past the end of its state.
	ErrOutOfRange = errors.New("out of range")
)

// Op is a single edit step.
// It is always one of Insert, Retain or Remove.
type Op interface {
	// Len returns the number of characters this step covers.
	Len() int

	fmt.Stringer

	isOp()
}

// Insert adds its text at the current position.
type Insert string

// Retain skips over this many characters unchanged.
type Retain int

// Remove deletes this many characters at the current position.
// The count is positive here; it is only negative on the wire.
type Remove int

func (i Insert) Len() int { return utf8.RuneCountInString(string(i)) }
func (r Retain) Len() int { return int(r) }
func (r Remove) Len() int { return int(r) }

func (Insert) isOp() {}
func (Retain) isOp() {}
func (Remove) isOp() {}

func (i Insert) String() string { return "Insert(" + strconv.Quote(string(i)) + ")" }
func (r Retain) String() string { return "Retain(" + strconv.Itoa(int(r)) + ")" }
func (r Remove) String() string { return "Remove(" + strconv.Itoa(int(r)) + ")" }

// Validate checks that every step is a known kind with a non-negative count.
func Validate(ops []Op) error {
	for i, op := range ops {
		switch op := op.(type) {
		case Insert:
		case Retain:
			if op < 0 {
				return fmt.Errorf("%w: negative retain %d at %d", ErrInvalidOperation, int(op), i)
			}
		case Remove:
			if op < 0 {
				return fmt.Errorf("%w: negative remove %d at %d", ErrInvalidOperation, int(op), i)
			}
		default:
			return fmt.Errorf("%w: %T at %d", ErrInvalidOperation, op, i)
		}
	}
	return nil
}

// Split splits op at the given offset.
// The two parts have the same kind as op and their lengths sum to op.Len().
func Split(op Op, offset int) (head, tail Op, err error) {
	if op == nil {
		return nil, nil, fmt.Errorf("%w: nil", ErrInvalidOperation)
	}
	if offset < 0 || offset > op.Len() {
		return nil, nil, fmt.Errorf("%w: %d not within %v", ErrInvalidOffset, offset, op)
	}

	switch op := op.(type) {
	case Insert:
		at := byteOffset(string(op), offset)
		return op[:at], op[at:], nil
	case Retain:
		return Retain(offset), op - Retain(offset), nil
	case Remove:
		return Remove(offset), op - Remove(offset), nil
	}
	return nil, nil, fmt.Errorf("%w: %T", ErrInvalidOperation, op)
}

// mustSplit is Split for callers that have already validated op and offset.
func mustSplit(op Op, offset int) (head, tail Op) {
	head, tail, err := Split(op, offset)
	if err != nil {
		panic(err)
	}
	return
}

// Merge joins two steps of the same kind.
// Returns false if they can't be merged.
func Merge(a, b Op) (Op, bool) {
	switch a := a.(type) {
	case Insert:
		if b, ok := b.(Insert); ok {
			return a + b, true
		}
	case Retain:
		if b, ok := b.(Retain); ok {
			return a + b, true
		}
	case Remove:
		if b, ok := b.(Remove); ok {
			return a + b, true
		}
	}
	return nil, false
}

// byteOffset returns the byte index of the n'th rune in s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// nonEmpty returns op, or nil if it has no length.
func nonEmpty(op Op) Op {
	if op == nil || op.Len() == 0 {
		return nil
	}
	return op
}
