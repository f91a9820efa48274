package ot

// Insertion returns ops which insert text at pos.
func Insertion(pos int, text string) []Op {
	return Simplify([]Op{Retain(pos), Insert(text)})
}

// Deletion returns ops which remove n characters at pos.
func Deletion(pos, n int) []Op {
	return Simplify([]Op{Retain(pos), Remove(n)})
}

// Replacement returns ops which replace length characters at pos with text.
func Replacement(pos, length int, text string) []Op {
	return Simplify([]Op{Retain(pos), Remove(length), Insert(text)})
}
