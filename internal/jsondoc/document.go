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

/*
Package jsondoc parses JSON text into a flat, read-only document and provides
schema-shaped views over it.

DOCUMENT LAYOUT:
================
A Document is not a tree of owned nodes. Every object and array gets a
numeric id from a generation counter as the parser reaches it, and every
child value lives in one map keyed by (parent id, key or index):

	{"text":"hi","extra":[{"text":"!"}]}

	containers: 0 = object{text, extra}   1 = array(len 1)   2 = object{text}
	entries:    (0,"text")  -> String "hi"
	            (0,"extra") -> Array #1
	            (1,0)       -> Object #2
	            (2,"text")  -> String "!"

Keys and string values are interned in a per-document Interner, so a key
that repeats across a document is stored once. Documents are built from
untrusted input and are never shared between connections.

SCHEMAS:
========
A schema view wraps an object handle (a "shortcut") and exposes one fallible
accessor per field. Accessors distinguish a missing key (ErrMissingField)
from a value of the wrong JSON kind (ErrWrongKind) and report the dotted
path of the failing field.
*/
package jsondoc

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// MaxDepth bounds object and array nesting.
const MaxDepth = 128

// Parse errors.
var (
	ErrSyntax  = errors.New("jsondoc: syntax error")
	ErrTooDeep = errors.New("jsondoc: nesting too deep")
)

// Kind is the JSON kind of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// NumberKind tells how a number was written.
type NumberKind uint8

const (
	// Uint is a non-negative integer that fits uint64.
	Uint NumberKind = iota
	// Int is a negative integer that fits int64.
	Int
	// Float is anything else.
	Float
)

// Number is a JSON number kept in the narrowest exact representation.
type Number struct {
	kind NumberKind
	u    uint64
	i    int64
	f    float64
}

func parseNumber(s string) (Number, error) {
	if !validNumber(s) {
		return Number{}, fmt.Errorf("invalid number literal %q", s)
	}
	if !strings.ContainsAny(s, ".eE") {
		if strings.HasPrefix(s, "-") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Number{kind: Int, i: i}, nil
			}
		} else if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Number{kind: Uint, u: u}, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, err
	}
	return Number{kind: Float, f: f}, nil
}

// validNumber reports whether s matches the JSON number grammar. The
// tokenizer accepts forms such as "01" and "1." that strconv would parse.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	switch {
	case i < len(s) && s[i] == '0':
		i++
	case i < len(s) && s[i] >= '1' && s[i] <= '9':
		i = skipDigits(s, i)
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		j := skipDigits(s, i+1)
		if j == i+1 {
			return false
		}
		i = j
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		j := skipDigits(s, i)
		if j == i {
			return false
		}
		i = j
	}
	return i == len(s)
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// Kind returns the representation of n.
func (n Number) Kind() NumberKind { return n.kind }

// AsUint returns n as a uint64 if it is a non-negative integer.
func (n Number) AsUint() (uint64, bool) {
	switch n.kind {
	case Uint:
		return n.u, true
	case Int:
		return 0, false
	default:
		if n.f >= 0 && n.f < 1<<64 && n.f == float64(uint64(n.f)) {
			return uint64(n.f), true
		}
		return 0, false
	}
}

// AsInt returns n as an int64 if it is an integer in range.
func (n Number) AsInt() (int64, bool) {
	switch n.kind {
	case Uint:
		if n.u > 1<<63-1 {
			return 0, false
		}
		return int64(n.u), true
	case Int:
		return n.i, true
	default:
		if n.f >= -(1<<63) && n.f < 1<<63 && n.f == float64(int64(n.f)) {
			return int64(n.f), true
		}
		return 0, false
	}
}

// AsFloat returns n as a float64, possibly losing precision.
func (n Number) AsFloat() float64 {
	switch n.kind {
	case Uint:
		return float64(n.u)
	case Int:
		return float64(n.i)
	default:
		return n.f
	}
}

// Value is one JSON value in a Document.
type Value struct {
	kind Kind
	b    bool
	num  Number
	str  Intern
	ref  uint32
}

// Kind returns the JSON kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the value of a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the value of a number.
func (v Value) Number() (Number, bool) { return v.num, v.kind == KindNumber }

// Intern returns the handle of a string.
func (v Value) Intern() (Intern, bool) { return v.str, v.kind == KindString }

// Object returns the handle of an object.
func (v Value) Object() (Object, bool) { return Object{id: v.ref}, v.kind == KindObject }

// Array returns the handle of an array.
func (v Value) Array() (Array, bool) { return Array{id: v.ref}, v.kind == KindArray }

// Object is a handle to an object container.
type Object struct {
	id uint32
}

// Array is a handle to an array container.
type Array struct {
	id uint32
}

type container struct {
	keys []Intern
	len  int
}

type entryKey struct {
	parent uint32
	slot   uint32
}

// Document is an immutable parsed JSON text.
type Document struct {
	strings    *Interner
	containers []container
	entries    map[entryKey]Value
	root       Value
	tooDeep    bool
}

// Parse builds a document from a single JSON value. Trailing non-space
// input is a syntax error.
func Parse(data []byte) (*Document, error) {
	d := &Document{
		strings: NewInterner(),
		entries: make(map[entryKey]Value),
	}
	iter := jsoniter.ParseBytes(jsoniter.ConfigDefault, data)
	d.root = d.parseValue(iter, 0)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, d.wrap(iter.Error)
	}
	// Only a clean end of input leaves io.EOF behind; any other byte after
	// the value is reported as invalid with no error set.
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error == nil {
		return nil, fmt.Errorf("%w: unexpected data after the top-level value", ErrSyntax)
	}
	return d, nil
}

func (d *Document) wrap(err error) error {
	if d.tooDeep {
		return fmt.Errorf("%w: more than %d levels", ErrTooDeep, MaxDepth)
	}
	return fmt.Errorf("%w: %v", ErrSyntax, err)
}

func (d *Document) newContainer() uint32 {
	id := uint32(len(d.containers))
	d.containers = append(d.containers, container{})
	return id
}

func (d *Document) parseValue(iter *jsoniter.Iterator, depth int) Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Value{kind: KindNull}
	case jsoniter.BoolValue:
		return Value{kind: KindBool, b: iter.ReadBool()}
	case jsoniter.NumberValue:
		raw := iter.ReadNumber()
		n, err := parseNumber(string(raw))
		if err != nil {
			iter.ReportError("parse number", err.Error())
		}
		return Value{kind: KindNumber, num: n}
	case jsoniter.StringValue:
		return Value{kind: KindString, str: d.strings.Intern(iter.ReadString())}
	case jsoniter.ArrayValue:
		if depth >= MaxDepth {
			d.tooDeep = true
			iter.ReportError("parse array", "nesting too deep")
			return Value{}
		}
		id := d.newContainer()
		n := 0
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			v := d.parseValue(iter, depth+1)
			if iter.Error != nil && iter.Error != io.EOF {
				return false
			}
			d.entries[entryKey{parent: id, slot: uint32(n)}] = v
			n++
			return true
		})
		d.containers[id].len = n
		return Value{kind: KindArray, ref: id}
	case jsoniter.ObjectValue:
		if depth >= MaxDepth {
			d.tooDeep = true
			iter.ReportError("parse object", "nesting too deep")
			return Value{}
		}
		id := d.newContainer()
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
			v := d.parseValue(iter, depth+1)
			if iter.Error != nil && iter.Error != io.EOF {
				return false
			}
			k := d.strings.Intern(key)
			ek := entryKey{parent: id, slot: uint32(k)}
			if _, dup := d.entries[ek]; !dup {
				d.containers[id].keys = append(d.containers[id].keys, k)
			}
			d.entries[ek] = v
			return true
		})
		d.containers[id].len = len(d.containers[id].keys)
		return Value{kind: KindObject, ref: id}
	default:
		iter.ReportError("parse value", "unexpected end of input or invalid value")
		return Value{}
	}
}

// Root returns the top-level value.
func (d *Document) Root() Value { return d.root }

// Text returns the string an Intern refers to.
func (d *Document) Text(id Intern) string { return d.strings.Decode(id) }

// StringValue returns the text of a string value.
func (d *Document) StringValue(v Value) (string, bool) {
	id, ok := v.Intern()
	if !ok {
		return "", false
	}
	return d.strings.Decode(id), true
}

// ObjectEntry looks up key in o. A key that was never interned cannot be
// present, so lookups of unknown keys never touch the entry map.
func (d *Document) ObjectEntry(o Object, key string) (Value, bool) {
	k, ok := d.strings.Find(key)
	if !ok {
		return Value{}, false
	}
	v, ok := d.entries[entryKey{parent: o.id, slot: uint32(k)}]
	return v, ok
}

// ObjectKeys returns the keys of o in first-seen order.
func (d *Document) ObjectKeys(o Object) []string {
	keys := d.containers[o.id].keys
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = d.strings.Decode(k)
	}
	return out
}

// ArrayLen returns the number of elements of a.
func (d *Document) ArrayLen(a Array) int { return d.containers[a.id].len }

// ArrayElement returns element i of a.
func (d *Document) ArrayElement(a Array, i int) (Value, bool) {
	if i < 0 || i >= d.containers[a.id].len {
		return Value{}, false
	}
	v, ok := d.entries[entryKey{parent: a.id, slot: uint32(i)}]
	return v, ok
}

// AppendJSON appends the compact JSON encoding of v to dst.
func (d *Document) AppendJSON(dst []byte, v Value) ([]byte, error) {
	stream := jsoniter.NewStream(jsoniter.ConfigDefault, nil, 256)
	d.writeValue(stream, v)
	if stream.Error != nil {
		return dst, stream.Error
	}
	return append(dst, stream.Buffer()...), nil
}

// Marshal returns the compact JSON encoding of v.
func (d *Document) Marshal(v Value) ([]byte, error) {
	return d.AppendJSON(nil, v)
}

func (d *Document) writeValue(stream *jsoniter.Stream, v Value) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.b)
	case KindNumber:
		switch v.num.kind {
		case Uint:
			stream.WriteUint64(v.num.u)
		case Int:
			stream.WriteInt64(v.num.i)
		default:
			stream.WriteRaw(strconv.FormatFloat(v.num.f, 'g', -1, 64))
		}
	case KindString:
		stream.WriteString(d.strings.Decode(v.str))
	case KindArray:
		stream.WriteArrayStart()
		a := Array{id: v.ref}
		for i := 0; i < d.ArrayLen(a); i++ {
			if i > 0 {
				stream.WriteMore()
			}
			e, _ := d.ArrayElement(a, i)
			d.writeValue(stream, e)
		}
		stream.WriteArrayEnd()
	case KindObject:
		stream.WriteObjectStart()
		for i, k := range d.containers[v.ref].keys {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(d.strings.Decode(k))
			d.writeValue(stream, d.entries[entryKey{parent: v.ref, slot: uint32(k)}])
		}
		stream.WriteObjectEnd()
	}
}
