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

import (
	"encoding/json"

	"craftwire/internal/jsondoc"
)

// JSONView is a schema view that can prove its whole subtree valid and
// write itself back out.
type JSONView interface {
	ValidateDeep() error
	json.Marshaler
}

// JSONType embeds a JSON document matching a schema as a string field.
//
// Summarize reads the string, parses the document and validates it against
// the schema, so a malformed payload fails when the packet is decoded rather
// than when a field is first read. The summary keeps the parsed document;
// View hands back the schema view over it.
type JSONType[V JSONView] struct {
	schema jsondoc.Schema[V]
	str    StringType
}

type jsonSummary[V any] struct {
	doc  *jsondoc.Document
	view V
}

// JSON returns a JSON field bounded to max characters of text.
func JSON[V JSONView](schema jsondoc.Schema[V], max int) JSONType[V] {
	return JSONType[V]{schema: schema, str: String(max)}
}

func (t JSONType[V]) Kind() string { return "JSON " + t.schema.Name() }

func (t JSONType[V]) Summarize(c *Cursor) (Summary, error) {
	start := c.pos
	s, err := t.str.Summarize(c)
	if err != nil {
		return Summary{}, WithKind(err, t.Kind())
	}
	text := t.str.ViewBytes(s)
	textStart := c.pos - len(text)
	doc, err := jsondoc.Parse(text)
	if err != nil {
		return Summary{}, WithKind(newError(textStart, err, "%v", err), t.Kind())
	}
	view, err := t.schema.Shortcut(doc, doc.Root())
	if err == nil {
		err = view.ValidateDeep()
	}
	if err != nil {
		err = jsondoc.InSchema(err, t.schema.Name())
		return Summary{}, WithKind(newError(textStart, err, "%v", err), t.Kind())
	}
	return c.Summary(start, &jsonSummary[V]{doc: doc, view: view}), nil
}

func (t JSONType[V]) View(s Summary) V {
	return s.data.(*jsonSummary[V]).view
}

// Document returns the parsed document behind a summary.
func (t JSONType[V]) Document(s Summary) *jsondoc.Document {
	return s.data.(*jsonSummary[V]).doc
}

func (t JSONType[V]) Encode(e *Encoder, v V) error {
	text, err := v.MarshalJSON()
	if err != nil {
		return WithKind(newError(-1, ErrInvalidJSON, "%v", err), t.Kind())
	}
	return WithKind(t.str.Encode(e, string(text)), t.Kind())
}
