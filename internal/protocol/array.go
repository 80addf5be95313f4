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

// List is the view of an Array. A decoded List reads its elements lazily
// from the session buffer; a List built with ListOf holds them directly.
type List[V any] struct {
	elem  Type[V]
	sums  []Summary
	items []V
	lazy  bool
}

// ListOf returns a List holding items, for encoding.
func ListOf[V any](items ...V) List[V] {
	return List[V]{items: items}
}

// Len returns the number of elements.
func (l List[V]) Len() int {
	if l.lazy {
		return len(l.sums)
	}
	return len(l.items)
}

// At returns element i.
func (l List[V]) At(i int) V {
	if l.lazy {
		return l.elem.View(l.sums[i])
	}
	return l.items[i]
}

// Slice returns every element.
func (l List[V]) Slice() []V {
	if !l.lazy {
		return l.items
	}
	out := make([]V, len(l.sums))
	for i, s := range l.sums {
		out[i] = l.elem.View(s)
	}
	return out
}

// ArrayType is a VarInt element count followed by the elements.
type ArrayType[V any] struct {
	elem Type[V]
	max  int
}

// Array returns an array of elem with at most max elements. max <= 0 means
// the count is only bounded by the frame size.
func Array[V any](elem Type[V], max int) ArrayType[V] {
	return ArrayType[V]{elem: elem, max: max}
}

func (t ArrayType[V]) Kind() string { return "array" }

// Summarize records one summary per element. Elements may be empty on the
// wire (a record with no fields), so the count is bounded by max, or by
// MaxArrayLen when max is unset, rather than by the remaining input.
// Storage grows with the elements actually read.
func (t ArrayType[V]) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	n, err := c.ReadLength()
	if err != nil {
		return Summary{}, WithKind(err, t.Kind())
	}
	limit := t.max
	if limit <= 0 {
		limit = MaxArrayLen
	}
	if n > limit {
		return Summary{}, WithKind(newError(start, ErrArrayTooLong, "array has %d element(s), which exceeds the maximum of %d", n, limit), t.Kind())
	}
	sums := make([]Summary, 0, min(n, c.Remaining()))
	for i := 0; i < n; i++ {
		s, err := t.elem.Summarize(c)
		if err != nil {
			return Summary{}, WithKind(WithIndex(err, i), t.Kind())
		}
		sums = append(sums, s)
	}
	return c.Summary(start, sums), nil
}

func (t ArrayType[V]) View(s Summary) List[V] {
	sums, _ := s.data.([]Summary)
	return List[V]{elem: t.elem, sums: sums, lazy: true}
}

func (t ArrayType[V]) Encode(e *Encoder, v List[V]) error {
	n := v.Len()
	if t.max > 0 && n > t.max {
		return WithKind(newError(-1, ErrOversized, "array has %d element(s), which exceeds the maximum of %d", n, t.max), t.Kind())
	}
	if err := e.WriteLength(n); err != nil {
		return WithKind(err, t.Kind())
	}
	for i := 0; i < n; i++ {
		if err := t.elem.Encode(e, v.At(i)); err != nil {
			return WithKind(WithIndex(err, i), t.Kind())
		}
	}
	return nil
}
