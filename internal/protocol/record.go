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

package protocol

import "fmt"

// FieldDef is a named member of a Record. It is implemented by *Field.
type FieldDef interface {
	Name() string
	summarize(c *Cursor) (Summary, error)
	bind(r *Record, index int)
}

// Field is a typed member of a Record.
//
// A Field belongs to exactly one record; NewRecord binds it and panics if
// the field was already bound elsewhere.
type Field[V any] struct {
	name  string
	typ   Type[V]
	rec   *Record
	index int
}

// NewField declares a record member named name of type t.
func NewField[V any](name string, t Type[V]) *Field[V] {
	return &Field[V]{name: name, typ: t, index: -1}
}

// Name returns the field name used in error paths.
func (f *Field[V]) Name() string { return f.name }

// Type returns the field's wire type.
func (f *Field[V]) Type() Type[V] { return f.typ }

func (f *Field[V]) summarize(c *Cursor) (Summary, error) {
	return f.typ.Summarize(c)
}

func (f *Field[V]) bind(r *Record, index int) {
	if f.rec != nil {
		panic(fmt.Sprintf("protocol: field %q already belongs to record %s", f.name, f.rec.name))
	}
	f.rec = r
	f.index = index
}

// Get reads the field out of a record view.
func (f *Field[V]) Get(v RecordView) V {
	if v.rec != f.rec {
		panic(fmt.Sprintf("protocol: field %q read from a view of %s", f.name, v.rec.name))
	}
	return f.typ.View(v.fields[f.index])
}

// Value pairs the field with a value for Record.Build.
func (f *Field[V]) Value(v V) FieldValue {
	return FieldValue{
		field: f,
		encode: func(e *Encoder) error {
			return f.typ.Encode(e, v)
		},
	}
}

// FieldValue is a field bound to the value it should encode.
type FieldValue struct {
	field  FieldDef
	encode func(e *Encoder) error
}

// Record is a composite wire type made of named fields laid out back to
// back in declaration order.
type Record struct {
	name   string
	fields []FieldDef
}

// NewRecord declares a record type.
func NewRecord(name string, fields ...FieldDef) *Record {
	r := &Record{name: name, fields: fields}
	for i, f := range fields {
		f.bind(r, i)
	}
	return r
}

func (r *Record) Kind() string { return r.name }

// NumFields returns the number of declared fields.
func (r *Record) NumFields() int { return len(r.fields) }

// Summarize validates every field in order. The summary stores each field's
// own summary, which includes the field's start offset, so views reach any
// field directly instead of skipping over the ones before it.
func (r *Record) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	sums := make([]Summary, len(r.fields))
	for i, f := range r.fields {
		s, err := f.summarize(c)
		if err != nil {
			return Summary{}, WithKind(WithField(err, f.Name()), r.name)
		}
		sums[i] = s
	}
	return c.Summary(start, sums), nil
}

func (r *Record) View(s Summary) RecordView {
	sums, _ := s.data.([]Summary)
	return RecordView{rec: r, sum: s, fields: sums}
}

// Encode copies the bytes of an already validated view.
func (r *Record) Encode(e *Encoder, v RecordView) error {
	if v.rec != r {
		return WithKind(newError(-1, ErrUnknownVariant, "view of %s encoded as %s", v.rec.name, r.name), r.name)
	}
	e.buf = append(e.buf, v.Raw()...)
	return nil
}

// Build encodes values in declaration order. values must list every field
// of the record exactly once, in order.
func (r *Record) Build(e *Encoder, values ...FieldValue) error {
	if len(values) != len(r.fields) {
		return WithKind(newError(-1, ErrOversized, "%s has %d field(s), got %d value(s)", r.name, len(r.fields), len(values)), r.name)
	}
	for i, v := range values {
		f := r.fields[i]
		if v.field != f {
			return WithKind(newError(-1, ErrUnknownVariant, "value %d is for field %q, expected %q", i, v.field.Name(), f.Name()), r.name)
		}
		if err := v.encode(e); err != nil {
			return WithKind(WithField(err, f.Name()), r.name)
		}
	}
	return nil
}

// RecordView is a lazily navigated, validated record.
type RecordView struct {
	rec    *Record
	sum    Summary
	fields []Summary
}

// Record returns the record type of the view.
func (v RecordView) Record() *Record { return v.rec }

// FieldStart returns the offset field i begins at.
func (v RecordView) FieldStart(i int) int { return v.fields[i].start }

// Summary returns the summary of the whole record.
func (v RecordView) Summary() Summary { return v.sum }

// Raw returns the encoded bytes of the record.
func (v RecordView) Raw() []byte { return v.sum.Raw() }
