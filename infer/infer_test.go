package infer

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/samthor/otext/apply"
	"github.com/samthor/otext/ot"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		old, new string
		want     []ot.Op
	}{
		{"hello", "hello", nil},
		{"", "", nil},
		{"hello", "", []ot.Op{ot.Remove(5)}},
		{"", "hi", []ot.Op{ot.Insert("hi")}},
		{"hello", "helXo", []ot.Op{ot.Retain(3), ot.Remove(1), ot.Insert("X")}},
		{"hello", "hello!", []ot.Op{ot.Retain(5), ot.Insert("!")}},
		{"hello", "ello", []ot.Op{ot.Remove(1)}},
		{"aaa", "aa", []ot.Op{ot.Remove(1)}},
		{"abc", "aXbc", []ot.Op{ot.Retain(1), ot.Insert("X")}},
		{"日本語", "日本人語", []ot.Op{ot.Retain(2), ot.Insert("人")}},
		// two separate changes collapse into one replacement
		{"abcdef", "Xbcdeg", []ot.Op{ot.Remove(6), ot.Insert("Xbcdeg")}},
	}

	for _, tt := range tests {
		got := Infer(tt.old, tt.new)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Infer(%q, %q): expected %v, was: %v", tt.old, tt.new, tt.want, got)
		}
	}
}

func TestInferGraphemes(t *testing.T) {
	// "e" + combining acute, changed to "e" + combining grave
	old := "cafe\u0301!"
	new := "cafe\u0300!"

	got := Infer(old, new)
	want := []ot.Op{ot.Retain(3), ot.Remove(2), ot.Insert("e\u0300")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected whole cluster replaced %v, was: %v", want, got)
	}

	if out, _, err := (apply.Text{}).Apply(old, got); err != nil || out != new {
		t.Errorf("bad apply: %q %v", out, err)
	}
}

func TestInferRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	// includes bytes that aren't valid UTF-8
	pieces := []string{"a", "a", "b", "日", "\u0301", " ", "\xff", "\xe6"}

	randomText := func() string {
		var sb strings.Builder
		for range r.IntN(8) {
			sb.WriteString(pieces[r.IntN(len(pieces))])
		}
		return sb.String()
	}

	for _, pair := range [][2]string{
		{"a\xff", "b\xff"},
		{"\xff\xfe", "\xff"},
		{"x", "x\xe6"},
	} {
		ops := Infer(pair[0], pair[1])
		out, _, err := (apply.Text{}).Apply(pair[0], ops)
		if err != nil || out != pair[1] {
			t.Errorf("%q => %q: ops %v gave %q (err=%v)", pair[0], pair[1], ops, out, err)
		}
	}

	for range 5000 {
		old, new := randomText(), randomText()
		ops := Infer(old, new)
		if ops == nil {
			if old != new {
				t.Fatalf("nil ops for %q => %q", old, new)
			}
			continue
		}
		out, _, err := apply.Text{}.Apply(old, ops)
		if err != nil || out != new {
			t.Fatalf("%q => %q: ops %v gave %q (err=%v)", old, new, ops, out, err)
		}
	}
}
