package ot

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Ops is an operation list with a compact JSON form.
// Insert is encoded as a string, Retain as a non-negative number and Remove as a negative number.
type Ops []Op

func (o Ops) MarshalJSON() ([]byte, error) {
	if err := Validate(o); err != nil {
		return nil, err
	}

	out := make([]any, len(o))
	for i, op := range o {
		switch op := op.(type) {
		case Insert:
			out[i] = string(op)
		case Retain:
			out[i] = int(op)
		case Remove:
			out[i] = -int(op)
		}
	}
	return json.Marshal(out)
}

func (o *Ops) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return fmt.Errorf("%w: bad json", ErrInvalidOperation)
	}
	res := gjson.ParseBytes(b)
	if res.Type == gjson.Null {
		*o = nil
		return nil
	}
	if !res.IsArray() {
		return fmt.Errorf("%w: expected array, got %v", ErrInvalidOperation, res.Type)
	}

	var out Ops
	var err error
	res.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.String:
			out = append(out, Insert(v.Str))
			return true
		case gjson.Number:
			if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
				err = fmt.Errorf("%w: bad count %v", ErrInvalidOperation, v.Raw)
				return false
			}
			if n := int(v.Num); n < 0 {
				out = append(out, Remove(-n))
			} else {
				out = append(out, Retain(n))
			}
			return true
		}
		err = fmt.Errorf("%w: unexpected %v", ErrInvalidOperation, v.Raw)
		return false
	})
	if err != nil {
		return err
	}

	*o = out
	return nil
}
