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
	"testing"
)

type labelView struct {
	ObjectView
	text string
}

type labelObject struct{}

func (labelObject) Name() string { return "object" }

func (labelObject) Shortcut(d *Document, v Value) (labelView, error) {
	o, err := MakeShortcut(v)
	if err != nil {
		return labelView{}, err
	}
	return labelView{ObjectView: ViewShortcut(d, o)}, nil
}

type labelString struct{}

func (labelString) Name() string { return "string" }

func (labelString) Shortcut(d *Document, v Value) (labelView, error) {
	s, err := d.AsString(v)
	return labelView{text: s}, err
}

var labelSchema = Either[labelView]("Label", labelObject{}, labelString{})

func parseRoot(t *testing.T, text string) (*Document, Value) {
	t.Helper()
	d, err := Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", text, err)
	}
	return d, d.Root()
}

func TestObjectViewAccessors(t *testing.T) {
	d, root := parseRoot(t, `{"name":"x","count":-3,"flag":true,"color":null,"items":[1]}`)
	o, err := MakeShortcut(root)
	if err != nil {
		t.Fatalf("MakeShortcut() error = %v", err)
	}
	v := ViewShortcut(d, o)

	if s, err := v.String("name"); err != nil || s != "x" {
		t.Errorf("String(name) = %q, %v", s, err)
	}
	if n, err := v.Int("count"); err != nil || n != -3 {
		t.Errorf("Int(count) = %d, %v", n, err)
	}
	if b, err := v.Bool("flag"); err != nil || !b {
		t.Errorf("Bool(flag) = %v, %v", b, err)
	}
	if _, ok, err := v.OptionalString("color"); ok || err != nil {
		t.Errorf("OptionalString(null) = %v, %v", ok, err)
	}
	if _, ok, err := v.OptionalBool("missing"); ok || err != nil {
		t.Errorf("OptionalBool(missing) = %v, %v", ok, err)
	}
	if a, ok, err := v.OptionalArray("items"); !ok || err != nil || d.ArrayLen(a) != 1 {
		t.Errorf("OptionalArray(items) = %v, %v", ok, err)
	}
}

func TestObjectViewErrors(t *testing.T) {
	d, root := parseRoot(t, `{"name":7,"flag":"yes"}`)
	o, _ := MakeShortcut(root)
	v := ViewShortcut(d, o)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing",
			call:    func() error { _, err := v.String("text"); return err },
			wantErr: ErrMissingField,
			wantMsg: "failed to access field `text`: field is missing",
		},
		{
			name:    "wrong kind",
			call:    func() error { _, err := v.String("name"); return err },
			wantErr: ErrWrongKind,
			wantMsg: "failed to access field `name`: expected string, got number",
		},
		{
			name:    "wrong kind optional",
			call:    func() error { _, _, err := v.OptionalBool("flag"); return err },
			wantErr: ErrWrongKind,
			wantMsg: "failed to access field `flag`: expected boolean, got string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFieldErrorPath(t *testing.T) {
	err := InSchema(InField(InIndex(InField(wrongKind("boolean", KindString), "bold"), 2), "extra"), "ChatMessage")

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("error %T is not *FieldError", err)
	}
	if fe.FieldPath() != "extra.2.bold" {
		t.Errorf("FieldPath() = %q, want %q", fe.FieldPath(), "extra.2.bold")
	}
	want := "failed to access field `extra.2.bold` of ChatMessage: expected boolean, got string"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if InField(nil, "x") != nil || InIndex(nil, 0) != nil || InSchema(nil, "S") != nil {
		t.Error("wrapping a nil error produced an error")
	}
}

func TestEither(t *testing.T) {
	d, root := parseRoot(t, `"plain"`)
	v, err := labelSchema.Shortcut(d, root)
	if err != nil || v.text != "plain" {
		t.Errorf("Shortcut(string) = %+v, %v", v, err)
	}

	d, root = parseRoot(t, `{"text":"obj"}`)
	v, err = labelSchema.Shortcut(d, root)
	if err != nil {
		t.Fatalf("Shortcut(object) error = %v", err)
	}
	if s, _ := v.String("text"); s != "obj" {
		t.Errorf("text = %q, want %q", s, "obj")
	}

	d, root = parseRoot(t, `42`)
	_, err = labelSchema.Shortcut(d, root)
	if !errors.Is(err, ErrNoVariant) {
		t.Fatalf("Shortcut(number) error = %v, want %v", err, ErrNoVariant)
	}
	want := "invalid Label: value of kind number matches none of object, string"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNumberConversions(t *testing.T) {
	d, root := parseRoot(t, `[18446744073709551615, 9223372036854775808, -1, 2.0, 2.5]`)
	a, _ := root.Array()

	if _, err := AsUint(mustElement(t, d, a, 0)); err != nil {
		t.Errorf("AsUint(max uint64) error = %v", err)
	}
	if _, err := AsInt(mustElement(t, d, a, 1)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AsInt(2^63) error = %v, want %v", err, ErrOutOfRange)
	}
	if _, err := AsUint(mustElement(t, d, a, 2)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AsUint(-1) error = %v, want %v", err, ErrOutOfRange)
	}
	if n, err := AsInt(mustElement(t, d, a, 3)); err != nil || n != 2 {
		t.Errorf("AsInt(2.0) = %d, %v", n, err)
	}
	if _, err := AsInt(mustElement(t, d, a, 4)); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AsInt(2.5) error = %v, want %v", err, ErrOutOfRange)
	}
}
