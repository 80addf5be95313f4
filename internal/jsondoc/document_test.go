/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package jsondoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLayout(t *testing.T) {
	d, err := Parse([]byte(`{"text":"hi","extra":[{"text":"!"}, 3, -4, 1.5, null, false]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	root, ok := d.Root().Object()
	if !ok {
		t.Fatalf("root kind = %v, want object", d.Root().Kind())
	}
	if diff := cmp.Diff([]string{"text", "extra"}, d.ObjectKeys(root)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	extra, _ := d.ObjectEntry(root, "extra")
	arr, ok := extra.Array()
	if !ok || d.ArrayLen(arr) != 6 {
		t.Fatalf("extra = %v, want array of 6", extra.Kind())
	}

	first, _ := d.ArrayElement(arr, 0)
	obj, _ := first.Object()
	text, _ := d.ObjectEntry(obj, "text")
	if s, _ := d.StringValue(text); s != "!" {
		t.Errorf("extra[0].text = %q, want %q", s, "!")
	}

	kinds := []Kind{KindObject, KindNumber, KindNumber, KindNumber, KindNull, KindBool}
	for i, want := range kinds {
		v, ok := d.ArrayElement(arr, i)
		if !ok || v.Kind() != want {
			t.Errorf("extra[%d] kind = %v, want %v", i, v.Kind(), want)
		}
	}

	n, _ := mustElement(t, d, arr, 1).Number()
	if u, ok := n.AsUint(); !ok || u != 3 {
		t.Errorf("extra[1] = %v, want 3", n)
	}
	n, _ = mustElement(t, d, arr, 2).Number()
	if i, ok := n.AsInt(); !ok || i != -4 {
		t.Errorf("extra[2] = %v, want -4", n)
	}
	if _, ok := n.AsUint(); ok {
		t.Error("negative number converted to uint")
	}
	n, _ = mustElement(t, d, arr, 3).Number()
	if n.Kind() != Float || n.AsFloat() != 1.5 {
		t.Errorf("extra[3] = %v, want 1.5", n)
	}

	if _, ok := d.ArrayElement(arr, 6); ok {
		t.Error("ArrayElement(6) found an element past the end")
	}
	if _, ok := d.ObjectEntry(root, "missing"); ok {
		t.Error("ObjectEntry(missing) found an entry")
	}
}

func mustElement(t *testing.T, d *Document, a Array, i int) Value {
	t.Helper()
	v, ok := d.ArrayElement(a, i)
	if !ok {
		t.Fatalf("element %d missing", i)
	}
	return v
}

func TestParseInternsRepeatedStrings(t *testing.T) {
	d, err := Parse([]byte(`[{"text":"a"},{"text":"a"},{"text":"text"}]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.strings.Len() != 2 {
		t.Errorf("interned %d strings, want 2", d.strings.Len())
	}
}

func TestParseDuplicateKeys(t *testing.T) {
	d, err := Parse([]byte(`{"a":1,"b":2,"a":3}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	obj, _ := d.Root().Object()
	if diff := cmp.Diff([]string{"a", "b"}, d.ObjectKeys(obj)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	v, _ := d.ObjectEntry(obj, "a")
	n, _ := v.Number()
	if u, _ := n.AsUint(); u != 3 {
		t.Errorf("a = %d, want the last value 3", u)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", ``, ErrSyntax},
		{"unterminated object", `{"a":1`, ErrSyntax},
		{"unterminated array", `[1,2`, ErrSyntax},
		{"bare word", `hello`, ErrSyntax},
		{"trailing data", `{} x`, ErrSyntax},
		{"two values", `1 2`, ErrSyntax},
		{"leading zero", `01`, ErrSyntax},
		{"leading zero in array", `[01]`, ErrSyntax},
		{"no digits after point", `1.`, ErrSyntax},
		{"no digits in exponent", `[1e]`, ErrSyntax},
		{"negative leading zero", `{"a":-00}`, ErrSyntax},
		{"too deep", strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1), ErrTooDeep},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}

	deep := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	if _, err := Parse([]byte(deep)); err != nil {
		t.Errorf("Parse(%d levels) error = %v", MaxDepth, err)
	}
}

func TestMarshalNormalizes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`{ "text" : "hi", "bold" : true }`, `{"text":"hi","bold":true}`},
		{`[1, -2, 2.5, null, "a\"b"]`, `[1,-2,2.5,null,"a\"b"]`},
		{`"plain"`, `"plain"`},
		{`{"nested":{"a":[]}}`, `{"nested":{"a":[]}}`},
	}

	for _, tt := range tests {
		d, err := Parse([]byte(tt.input))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.input, err)
		}
		got, err := d.Marshal(d.Root())
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("alpha")
	b := in.Intern("beta")
	if a == b {
		t.Fatal("distinct strings share a handle")
	}
	if got := in.Intern("alpha"); got != a {
		t.Errorf("Intern(alpha) again = %d, want %d", got, a)
	}

	size := len(in.buf)
	builder := in.Begin()
	builder.WriteString("al")
	builder.WriteRune('p')
	builder.WriteString("ha")
	if got := builder.Finish(); got != a {
		t.Errorf("built alpha = %d, want %d", got, a)
	}
	if len(in.buf) != size {
		t.Errorf("buffer grew to %d on a duplicate, want %d", len(in.buf), size)
	}

	builder = in.Begin()
	builder.WriteString("scratch")
	builder.Abort()
	if len(in.buf) != size {
		t.Errorf("buffer is %d after Abort, want %d", len(in.buf), size)
	}

	if _, ok := in.Find("gamma"); ok {
		t.Error("Find(gamma) found a string never interned")
	}
	if in.Decode(b) != "beta" || in.Len() != 2 {
		t.Errorf("Decode(b) = %q, Len() = %d", in.Decode(b), in.Len())
	}
}
