package apply

import (
	"unicode/utf8"

	"github.com/samthor/otext/ot"
)

// Document applies operation lists to text and its cursor together.
type Document struct {
	text   Text
	cursor CursorApplier
}

var _ Applier[DocumentState] = Document{}

func (d Document) Initial() DocumentState {
	return DocumentState{Text: d.text.Initial(), Cursor: d.cursor.Initial()}
}

func (d Document) Fingerprint(state DocumentState) Fingerprint {
	return d.text.Fingerprint(state.Text)
}

// Apply applies ops to the text and moves the cursor to match.
// The undo only covers the text.
func (d Document) Apply(state DocumentState, ops []ot.Op) (DocumentState, []ot.Op, error) {
	text, undo, err := d.text.Apply(state.Text, ops)
	if err != nil {
		return DocumentState{}, nil, err
	}

	size := utf8.RuneCountInString(text)
	cursor := d.cursor.Apply(state.Cursor, ops)
	cursor.Start = min(max(cursor.Start, 0), size)
	cursor.End = min(max(cursor.End, 0), size)

	return DocumentState{Text: text, Cursor: cursor}, undo, nil
}
