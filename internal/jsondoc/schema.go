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
	"strconv"
	"strings"
)

// Schema validation errors.
var (
	ErrMissingField = errors.New("missing field")
	ErrWrongKind    = errors.New("wrong JSON kind")
	ErrOutOfRange   = errors.New("number out of range")
	ErrNoVariant    = errors.New("no matching variant")
)

// FieldError reports a schema mismatch at a path inside a document.
type FieldError struct {
	// Schema is the name of the outermost schema being validated.
	Schema string
	// Path holds the failing location, innermost part first.
	Path []string
	Err  error
	Msg  string
}

func (e *FieldError) Error() string {
	var b strings.Builder
	if len(e.Path) > 0 {
		b.WriteString("failed to access field `")
		b.WriteString(e.FieldPath())
		b.WriteString("`")
		if e.Schema != "" {
			b.WriteString(" of ")
			b.WriteString(e.Schema)
		}
		b.WriteString(": ")
	} else if e.Schema != "" {
		b.WriteString("invalid ")
		b.WriteString(e.Schema)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

func (e *FieldError) Unwrap() error { return e.Err }

// FieldPath renders the path outermost-first, joined with dots.
func (e *FieldError) FieldPath() string {
	parts := make([]string, 0, len(e.Path))
	for i := len(e.Path) - 1; i >= 0; i-- {
		parts = append(parts, e.Path[i])
	}
	return strings.Join(parts, ".")
}

func asFieldError(err error) *FieldError {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}
	return &FieldError{Err: err, Msg: err.Error()}
}

// InField records that err happened inside the named field.
func InField(err error, name string) error {
	if err == nil {
		return nil
	}
	fe := asFieldError(err)
	fe.Path = append(fe.Path, name)
	return fe
}

// InIndex records that err happened inside array element i.
func InIndex(err error, i int) error {
	if err == nil {
		return nil
	}
	fe := asFieldError(err)
	fe.Path = append(fe.Path, strconv.Itoa(i))
	return fe
}

// InSchema tags err with the schema being validated. The outermost schema
// wins.
func InSchema(err error, schema string) error {
	if err == nil {
		return nil
	}
	fe := asFieldError(err)
	fe.Schema = schema
	return fe
}

func wrongKind(want string, got Kind) error {
	return &FieldError{Err: ErrWrongKind, Msg: "expected " + want + ", got " + got.String()}
}

// Schema turns a document value into a typed view. Shortcut checks only the
// kind of v; field contents are checked by the view's accessors or by its
// ValidateDeep method.
type Schema[V any] interface {
	Name() string
	Shortcut(d *Document, v Value) (V, error)
}

// MakeShortcut asserts v is an object and returns its handle.
func MakeShortcut(v Value) (Object, error) {
	o, ok := v.Object()
	if !ok {
		return Object{}, wrongKind("object", v.Kind())
	}
	return o, nil
}

// ObjectView is the generic schema view over one object.
type ObjectView struct {
	doc *Document
	obj Object
}

// ViewShortcut wraps an object handle produced by MakeShortcut.
func ViewShortcut(d *Document, o Object) ObjectView {
	return ObjectView{doc: d, obj: o}
}

// Document returns the document the view reads from.
func (v ObjectView) Document() *Document { return v.doc }

// Keys returns the object's keys in document order.
func (v ObjectView) Keys() []string { return v.doc.ObjectKeys(v.obj) }

// Field returns a required field.
func (v ObjectView) Field(name string) (Value, error) {
	val, ok := v.doc.ObjectEntry(v.obj, name)
	if !ok {
		return Value{}, InField(&FieldError{Err: ErrMissingField, Msg: "field is missing"}, name)
	}
	return val, nil
}

// Optional returns a field that may be absent or null.
func (v ObjectView) Optional(name string) (Value, bool) {
	val, ok := v.doc.ObjectEntry(v.obj, name)
	if !ok || val.IsNull() {
		return Value{}, false
	}
	return val, true
}

// String returns a required string field.
func (v ObjectView) String(name string) (string, error) {
	val, err := v.Field(name)
	if err != nil {
		return "", err
	}
	s, err := v.doc.AsString(val)
	return s, InField(err, name)
}

// OptionalString returns a string field that may be absent or null.
func (v ObjectView) OptionalString(name string) (string, bool, error) {
	val, ok := v.Optional(name)
	if !ok {
		return "", false, nil
	}
	s, err := v.doc.AsString(val)
	if err != nil {
		return "", false, InField(err, name)
	}
	return s, true, nil
}

// Bool returns a required boolean field.
func (v ObjectView) Bool(name string) (bool, error) {
	val, err := v.Field(name)
	if err != nil {
		return false, err
	}
	b, err := AsBool(val)
	return b, InField(err, name)
}

// OptionalBool returns a boolean field that may be absent or null.
func (v ObjectView) OptionalBool(name string) (bool, bool, error) {
	val, ok := v.Optional(name)
	if !ok {
		return false, false, nil
	}
	b, err := AsBool(val)
	if err != nil {
		return false, false, InField(err, name)
	}
	return b, true, nil
}

// Int returns a required integer field.
func (v ObjectView) Int(name string) (int64, error) {
	val, err := v.Field(name)
	if err != nil {
		return 0, err
	}
	i, err := AsInt(val)
	return i, InField(err, name)
}

// OptionalArray returns an array field that may be absent or null.
func (v ObjectView) OptionalArray(name string) (Array, bool, error) {
	val, ok := v.Optional(name)
	if !ok {
		return Array{}, false, nil
	}
	a, ok := val.Array()
	if !ok {
		return Array{}, false, InField(wrongKind("array", val.Kind()), name)
	}
	return a, true, nil
}

// AsString converts a string value.
func (d *Document) AsString(v Value) (string, error) {
	s, ok := d.StringValue(v)
	if !ok {
		return "", wrongKind("string", v.Kind())
	}
	return s, nil
}

// AsBool converts a boolean value.
func AsBool(v Value) (bool, error) {
	b, ok := v.Bool()
	if !ok {
		return false, wrongKind("boolean", v.Kind())
	}
	return b, nil
}

// AsInt converts an integral number value.
func AsInt(v Value) (int64, error) {
	n, ok := v.Number()
	if !ok {
		return 0, wrongKind("number", v.Kind())
	}
	i, ok := n.AsInt()
	if !ok {
		return 0, &FieldError{Err: ErrOutOfRange, Msg: "expected an integer"}
	}
	return i, nil
}

// AsUint converts a non-negative integral number value.
func AsUint(v Value) (uint64, error) {
	n, ok := v.Number()
	if !ok {
		return 0, wrongKind("number", v.Kind())
	}
	u, ok := n.AsUint()
	if !ok {
		return 0, &FieldError{Err: ErrOutOfRange, Msg: "expected a non-negative integer"}
	}
	return u, nil
}

// Either picks the first schema whose kind check accepts the value. It is
// used for values that may be written in more than one shape.
func Either[V any](name string, variants ...Schema[V]) Schema[V] {
	return either[V]{name: name, variants: variants}
}

type either[V any] struct {
	name     string
	variants []Schema[V]
}

func (e either[V]) Name() string { return e.name }

func (e either[V]) Shortcut(d *Document, v Value) (V, error) {
	names := make([]string, 0, len(e.variants))
	for _, s := range e.variants {
		view, err := s.Shortcut(d, v)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrWrongKind) {
			return view, err
		}
		names = append(names, s.Name())
	}
	var zero V
	return zero, &FieldError{Schema: e.name, Err: ErrNoVariant,
		Msg: "value of kind " + v.Kind().String() + " matches none of " + strings.Join(names, ", ")}
}
