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

package chat

import (
	"strings"

	"craftwire/internal/jsondoc"
)

// Schema is the chat message schema. A message may be written as a plain
// string, a single component object, or an array of components.
var Schema jsondoc.Schema[MessageView] = messageSchema{}

type messageSchema struct{}

func (messageSchema) Name() string { return "ChatMessage" }

func (messageSchema) Shortcut(d *jsondoc.Document, v jsondoc.Value) (MessageView, error) {
	switch v.Kind() {
	case jsondoc.KindString, jsondoc.KindObject, jsondoc.KindArray:
		return MessageView{doc: d, root: v}, nil
	}
	return MessageView{}, jsondoc.InSchema(&jsondoc.FieldError{
		Err: jsondoc.ErrWrongKind,
		Msg: "expected string, object or array, got " + v.Kind().String(),
	}, "ChatMessage")
}

// ComponentSchema validates a single component, written as an object or as
// a bare string.
var ComponentSchema = jsondoc.Either[ComponentView]("ChatComponent", objectComponent{}, stringComponent{})

type objectComponent struct{}

func (objectComponent) Name() string { return "object" }

func (objectComponent) Shortcut(d *jsondoc.Document, v jsondoc.Value) (ComponentView, error) {
	o, err := jsondoc.MakeShortcut(v)
	if err != nil {
		return ComponentView{}, err
	}
	return ComponentView{obj: jsondoc.ViewShortcut(d, o), isObject: true}, nil
}

type stringComponent struct{}

func (stringComponent) Name() string { return "string" }

func (stringComponent) Shortcut(d *jsondoc.Document, v jsondoc.Value) (ComponentView, error) {
	s, err := d.AsString(v)
	if err != nil {
		return ComponentView{}, err
	}
	return ComponentView{text: s}, nil
}

// MessageView is a validated-on-demand view of a chat message.
type MessageView struct {
	doc  *jsondoc.Document
	root jsondoc.Value
}

// Len returns the number of top-level components.
func (m MessageView) Len() int {
	if a, ok := m.root.Array(); ok {
		return m.doc.ArrayLen(a)
	}
	return 1
}

// At returns top-level component i.
func (m MessageView) At(i int) (ComponentView, error) {
	a, ok := m.root.Array()
	if !ok {
		return ComponentSchema.Shortcut(m.doc, m.root)
	}
	v, _ := m.doc.ArrayElement(a, i)
	c, err := ComponentSchema.Shortcut(m.doc, v)
	return c, jsondoc.InIndex(err, i)
}

// ValidateDeep checks every component of the message.
func (m MessageView) ValidateDeep() error {
	for i := 0; i < m.Len(); i++ {
		c, err := m.At(i)
		if err == nil {
			err = c.ValidateDeep()
			if _, isArray := m.root.Array(); isArray {
				err = jsondoc.InIndex(err, i)
			}
		}
		if err != nil {
			return jsondoc.InSchema(err, "ChatMessage")
		}
	}
	return nil
}

// Reify validates the message and converts it into an owned Message.
func (m MessageView) Reify() (Message, error) {
	if err := m.ValidateDeep(); err != nil {
		return nil, err
	}
	return m.ReifyValidated(), nil
}

// ReifyValidated converts a message that already passed ValidateDeep.
func (m MessageView) ReifyValidated() Message {
	out := make(Message, m.Len())
	for i := range out {
		c, _ := m.At(i)
		out[i] = c.ReifyValidated()
	}
	return out
}

// PlainText returns the text of a validated message.
func (m MessageView) PlainText() string {
	return m.ReifyValidated().PlainText()
}

// MarshalJSON writes the message back out from its document.
func (m MessageView) MarshalJSON() ([]byte, error) {
	if m.doc == nil {
		return []byte("[]"), nil
	}
	return m.doc.Marshal(m.root)
}

func (m MessageView) String() string {
	return strings.TrimSpace(m.PlainText())
}

// ComponentView is a view of one component.
type ComponentView struct {
	obj      jsondoc.ObjectView
	isObject bool
	text     string
}

// Text returns the text, if set. Components that only carry styling or a
// translation key have none.
func (c ComponentView) Text() (string, bool, error) {
	if !c.isObject {
		return c.text, true, nil
	}
	return c.obj.OptionalString("text")
}

// Color returns the color, if set.
func (c ComponentView) Color() (string, bool, error) {
	if !c.isObject {
		return "", false, nil
	}
	return c.obj.OptionalString("color")
}

func (c ComponentView) flag(name string) (*bool, error) {
	if !c.isObject {
		return nil, nil
	}
	v, ok, err := c.obj.OptionalBool(name)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// Bold returns the bold flag, or nil when unset.
func (c ComponentView) Bold() (*bool, error) { return c.flag("bold") }

// Italic returns the italic flag, or nil when unset.
func (c ComponentView) Italic() (*bool, error) { return c.flag("italic") }

// Underlined returns the underlined flag, or nil when unset.
func (c ComponentView) Underlined() (*bool, error) { return c.flag("underlined") }

// Strikethrough returns the strikethrough flag, or nil when unset.
func (c ComponentView) Strikethrough() (*bool, error) { return c.flag("strikethrough") }

// Obfuscated returns the obfuscated flag, or nil when unset.
func (c ComponentView) Obfuscated() (*bool, error) { return c.flag("obfuscated") }

// NumExtra returns the number of child components.
func (c ComponentView) NumExtra() (int, error) {
	if !c.isObject {
		return 0, nil
	}
	a, ok, err := c.obj.OptionalArray("extra")
	if err != nil || !ok {
		return 0, err
	}
	return c.obj.Document().ArrayLen(a), nil
}

// Extra returns child component i.
func (c ComponentView) Extra(i int) (ComponentView, error) {
	var (
		a   jsondoc.Array
		ok  bool
		err error
	)
	if c.isObject {
		a, ok, err = c.obj.OptionalArray("extra")
		if err != nil {
			return ComponentView{}, err
		}
	}
	var v jsondoc.Value
	if ok {
		v, ok = c.obj.Document().ArrayElement(a, i)
	}
	if !ok {
		return ComponentView{}, jsondoc.InField(jsondoc.InIndex(&jsondoc.FieldError{
			Err: jsondoc.ErrMissingField, Msg: "element is missing"}, i), "extra")
	}
	child, err := ComponentSchema.Shortcut(c.obj.Document(), v)
	return child, jsondoc.InField(jsondoc.InIndex(err, i), "extra")
}

// ValidateDeep checks every field of the component and its children.
func (c ComponentView) ValidateDeep() error {
	if _, _, err := c.Text(); err != nil {
		return err
	}
	if _, _, err := c.Color(); err != nil {
		return err
	}
	for _, name := range []string{"bold", "italic", "underlined", "strikethrough", "obfuscated"} {
		if _, err := c.flag(name); err != nil {
			return err
		}
	}
	n, err := c.NumExtra()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		child, err := c.Extra(i)
		if err != nil {
			return err
		}
		if err := child.ValidateDeep(); err != nil {
			return jsondoc.InField(jsondoc.InIndex(err, i), "extra")
		}
	}
	return nil
}

// Reify validates the component and converts it into an owned Component.
func (c ComponentView) Reify() (Component, error) {
	if err := c.ValidateDeep(); err != nil {
		return Component{}, err
	}
	return c.ReifyValidated(), nil
}

// ReifyValidated converts a component that already passed ValidateDeep.
func (c ComponentView) ReifyValidated() Component {
	var out Component
	out.Text, _, _ = c.Text()
	out.Color, _, _ = c.Color()
	out.Bold, _ = c.Bold()
	out.Italic, _ = c.Italic()
	out.Underlined, _ = c.Underlined()
	out.Strikethrough, _ = c.Strikethrough()
	out.Obfuscated, _ = c.Obfuscated()
	n, _ := c.NumExtra()
	for i := 0; i < n; i++ {
		child, _ := c.Extra(i)
		out.Extra = append(out.Extra, child.ReifyValidated())
	}
	return out
}
