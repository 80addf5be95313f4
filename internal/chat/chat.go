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

// Package chat implements the JSON chat text format carried by Disconnect
// packets and status descriptions.
package chat

import (
	"strings"

	jsoniter "github.com/json-iterator/go"

	"craftwire/internal/jsondoc"
	"craftwire/internal/protocol"
)

// Field is the wire type of a chat message: a length-prefixed JSON string of
// at most protocol.MaxChatLen characters.
var Field = protocol.JSON[MessageView](Schema, protocol.MaxChatLen)

// Component is one styled run of chat text.
type Component struct {
	Text          string      `json:"text"`
	Color         string      `json:"color,omitempty"`
	Bold          *bool       `json:"bold,omitempty"`
	Italic        *bool       `json:"italic,omitempty"`
	Underlined    *bool       `json:"underlined,omitempty"`
	Strikethrough *bool       `json:"strikethrough,omitempty"`
	Obfuscated    *bool       `json:"obfuscated,omitempty"`
	Extra         []Component `json:"extra,omitempty"`
}

// Text returns an unstyled component.
func Text(s string) Component {
	return Component{Text: s}
}

// WithColor returns c with its color set.
func (c Component) WithColor(color string) Component {
	c.Color = color
	return c
}

// WithBold returns c with bold set.
func (c Component) WithBold(v bool) Component {
	c.Bold = &v
	return c
}

// WithItalic returns c with italic set.
func (c Component) WithItalic(v bool) Component {
	c.Italic = &v
	return c
}

// Message is a chat message: a sequence of components rendered in order.
type Message []Component

// PlainText returns the text of m with all styling dropped.
func (m Message) PlainText() string {
	var b strings.Builder
	for _, c := range m {
		c.appendText(&b)
	}
	return b.String()
}

func (c Component) appendText(b *strings.Builder) {
	b.WriteString(c.Text)
	for _, e := range c.Extra {
		e.appendText(b)
	}
}

// MarshalJSON encodes m as a JSON array of components.
func (m Message) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal([]Component(m))
}

// ViewOf returns a document-backed view of m, for use where a wire field
// expects a view.
func ViewOf(m Message) (MessageView, error) {
	text, err := m.MarshalJSON()
	if err != nil {
		return MessageView{}, err
	}
	doc, err := jsondoc.Parse(text)
	if err != nil {
		return MessageView{}, err
	}
	return Schema.Shortcut(doc, doc.Root())
}
