package ot

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestOpsJSON(t *testing.T) {
	ops := Ops{Retain(3), Remove(2), Insert("hi"), Insert("12")}
	b, err := json.Marshal(ops)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(b) != `[3,-2,"hi","12"]` {
		t.Errorf("unexpected encoding: %s", b)
	}

	var out Ops
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(out, ops) {
		t.Errorf("expected %v, was: %v", ops, out)
	}
}

func TestOpsJSONInStruct(t *testing.T) {
	var msg struct {
		Ops Ops `json:"ops"`
	}
	if err := json.Unmarshal([]byte(`{"ops":[0,"",-1]}`), &msg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !reflect.DeepEqual(msg.Ops, Ops{Retain(0), Insert(""), Remove(1)}) {
		t.Errorf("unexpected: %v", msg.Ops)
	}

	if err := json.Unmarshal([]byte(`{"ops":null}`), &msg); err != nil || msg.Ops != nil {
		t.Errorf("expected nil ops, was: %v %v", msg.Ops, err)
	}
}

func TestOpsJSONInvalid(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`[1.5]`,
		`[true]`,
		`[[1]]`,
		`"abc"`,
	} {
		var out Ops
		if err := out.UnmarshalJSON([]byte(raw)); !errors.Is(err, ErrInvalidOperation) {
			t.Errorf("%s: expected ErrInvalidOperation, was: %v", raw, err)
		}
	}

	if _, err := json.Marshal(Ops{Retain(-1)}); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation on marshal, was: %v", err)
	}
}
