package apply

import (
	"github.com/samthor/otext/ot"
)

// CursorApplier moves a Cursor through edits.
// It has no undo or fingerprint, as a cursor is derived from its text.
type CursorApplier struct{}

func (CursorApplier) Initial() Cursor {
	return Cursor{}
}

// Apply moves both ends of the cursor.
// Text inserted before an offset pushes it forward, and text removed before an offset pulls it back.
// Edits exactly at the offset don't move it.
func (CursorApplier) Apply(c Cursor, ops []ot.Op) Cursor {
	return Cursor{
		Start: adjustPosition(c.Start, ops),
		End:   adjustPosition(c.End, ops),
	}
}

func adjustPosition(pos int, ops []ot.Op) int {
	at := 0 // walked so far, in the new text
	for _, op := range ops {
		if at >= pos {
			break
		}

		switch op := op.(type) {
		case ot.Insert:
			at += op.Len()
			pos += op.Len()
		case ot.Remove:
			// A removal over pos leaves it where the removal started.
			pos = max(at, pos-int(op))
		case ot.Retain:
			at += int(op)
		}
	}
	return pos
}
