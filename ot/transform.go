package ot

// Transform derives the bottom two sides of the OT diamond.
// Given clientOps and serverOps both computed against the same base, it returns clientP to apply after serverOps and serverP to apply after clientOps, such that both paths produce the same state.
//
// When both sides insert at the same position, the client insert goes first.
func Transform(clientOps, serverOps []Op) (clientP, serverP []Op, err error) {
	if err = Validate(clientOps); err != nil {
		return nil, nil, err
	}
	if err = Validate(serverOps); err != nil {
		return nil, nil, err
	}

	var ci, si int
	var c, s Op // current heads, nil if consumed

	for {
		if c == nil && ci < len(clientOps) {
			c = clientOps[ci]
			ci++
		}
		if s == nil && si < len(serverOps) {
			s = serverOps[si]
			si++
		}
		if c == nil && s == nil {
			break
		}

		if c != nil && c.Len() == 0 {
			c = nil
			continue
		}
		if s != nil && s.Len() == 0 {
			s = nil
			continue
		}

		// Inserts don't consume base text, so they pass through and the other side skips over them.
		if ins, ok := c.(Insert); ok {
			clientP = append(clientP, ins)
			serverP = append(serverP, Retain(ins.Len()))
			c = nil
			continue
		}
		if ins, ok := s.(Insert); ok {
			clientP = append(clientP, Retain(ins.Len()))
			serverP = append(serverP, ins)
			s = nil
			continue
		}

		// One side has run out; whatever remains touches text the other never saw.
		if s == nil {
			clientP = append(clientP, c)
			c = nil
			continue
		}
		if c == nil {
			serverP = append(serverP, s)
			s = nil
			continue
		}

		n := min(c.Len(), s.Len())
		cHead, cTail := mustSplit(c, n)
		sHead, sTail := mustSplit(s, n)
		c, s = nonEmpty(cTail), nonEmpty(sTail)

		switch cHead.(type) {
		case Retain:
			switch sHead.(type) {
			case Retain:
				clientP = append(clientP, cHead)
				serverP = append(serverP, sHead)
			case Remove:
				serverP = append(serverP, sHead)
			}
		case Remove:
			switch sHead.(type) {
			case Retain:
				clientP = append(clientP, cHead)
			case Remove:
				// both removed the same text
			}
		}
	}

	return Simplify(clientP), Simplify(serverP), nil
}

// TransformNullable is Transform where a nil list means there is nothing to transform against.
// If either side is nil, both are returned unchanged.
func TransformNullable(clientOps, serverOps []Op) (clientP, serverP []Op, err error) {
	if clientOps == nil || serverOps == nil {
		return clientOps, serverOps, nil
	}
	return Transform(clientOps, serverOps)
}
