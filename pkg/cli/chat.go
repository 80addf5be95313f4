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
package cli

import (
	"strings"

	"craftwire/internal/chat"
)

// chatColors maps named chat colors to the nearest ANSI code.
var chatColors = map[string]string{
	"black":        Black,
	"dark_blue":    Blue,
	"dark_green":   Green,
	"dark_aqua":    Cyan,
	"dark_red":     Red,
	"dark_purple":  Magenta,
	"gold":         Yellow,
	"gray":         White,
	"dark_gray":    BrightBlack,
	"blue":         BrightBlue,
	"green":        BrightGreen,
	"aqua":         BrightCyan,
	"red":          BrightRed,
	"light_purple": BrightMagenta,
	"yellow":       BrightYellow,
	"white":        BrightWhite,
}

// style is the formatting in effect for a component after inheritance.
type style struct {
	color                                   string
	bold, italic, underlined, strike, obfus bool
}

func (s style) inherit(c chat.Component) style {
	if c.Color != "" {
		s.color = c.Color
	}
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.bold, c.Bold)
	set(&s.italic, c.Italic)
	set(&s.underlined, c.Underlined)
	set(&s.strike, c.Strikethrough)
	set(&s.obfus, c.Obfuscated)
	return s
}

func (s style) codes() string {
	var b strings.Builder
	if code, ok := chatColors[s.color]; ok {
		b.WriteString(code)
	}
	if s.bold {
		b.WriteString(Bold)
	}
	if s.italic {
		b.WriteString(Italic)
	}
	if s.underlined {
		b.WriteString(Underline)
	}
	if s.strike {
		b.WriteString(Strikethrough)
	}
	if s.obfus {
		b.WriteString(Blink)
	}
	return b.String()
}

// RenderChat renders m for a terminal. Extra components inherit the style of
// their parent. Unknown color names render uncolored. With colors disabled
// the result equals m.PlainText().
func RenderChat(m chat.Message) string {
	if !colorsEnabled {
		return m.PlainText()
	}
	var b strings.Builder
	for _, c := range m {
		renderComponent(&b, c, style{})
	}
	return b.String()
}

func renderComponent(b *strings.Builder, c chat.Component, parent style) {
	s := parent.inherit(c)
	if c.Text != "" {
		if codes := s.codes(); codes != "" {
			b.WriteString(codes)
			b.WriteString(c.Text)
			b.WriteString(Reset)
		} else {
			b.WriteString(c.Text)
		}
	}
	for _, e := range c.Extra {
		renderComponent(b, e, s)
	}
}
