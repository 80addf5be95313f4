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

// Option is a value that may be absent.
type Option[V any] struct {
	Value V
	Valid bool
}

// Some returns a present Option.
func Some[V any](v V) Option[V] {
	return Option[V]{Value: v, Valid: true}
}

// None returns an absent Option.
func None[V any]() Option[V] {
	return Option[V]{}
}

// Get returns the value and whether it is present.
func (o Option[V]) Get() (V, bool) {
	return o.Value, o.Valid
}

// OptionalType is a boolean presence flag followed by the inner value.
type OptionalType[V any] struct {
	inner Type[V]
}

// Optional wraps inner in a presence flag.
func Optional[V any](inner Type[V]) OptionalType[V] {
	return OptionalType[V]{inner: inner}
}

func (t OptionalType[V]) Kind() string { return "optional " + t.inner.Kind() }

// Summarize stores the inner summary, or nil when the flag is clear.
func (t OptionalType[V]) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	present, err := boolType{}.DecodeSimple(c)
	if err != nil {
		return Summary{}, WithKind(err, t.Kind())
	}
	if !present {
		return c.Summary(start, nil), nil
	}
	inner, err := t.inner.Summarize(c)
	if err != nil {
		return Summary{}, err
	}
	return c.Summary(start, &inner), nil
}

func (t OptionalType[V]) View(s Summary) Option[V] {
	inner, _ := s.data.(*Summary)
	if inner == nil {
		return None[V]()
	}
	return Some(t.inner.View(*inner))
}

func (t OptionalType[V]) Encode(e *Encoder, v Option[V]) error {
	e.WriteBool(v.Valid)
	if !v.Valid {
		return nil
	}
	return t.inner.Encode(e, v.Value)
}
