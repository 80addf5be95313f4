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
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func encodeString(t *testing.T, s string) []byte {
	t.Helper()
	e := NewEncoder(0)
	if err := String(0).Encode(e, s); err != nil {
		t.Fatalf("Encode(%q) error = %v", s, err)
	}
	return e.Bytes()
}

func TestStringBounds(t *testing.T) {
	tests := []struct {
		name    string
		typ     StringType
		input   []byte
		want    string
		wantErr error
	}{
		{
			name:  "within bound",
			typ:   String(16),
			input: []byte{0x05, 'h', 'e', 'l', 'l', 'o'},
			want:  "hello",
		},
		{
			name:    "declared length over four bytes per character",
			typ:     String(2),
			input:   []byte{0x09},
			wantErr: ErrStringTooLong,
		},
		{
			name:    "too many characters",
			typ:     String(2),
			input:   []byte{0x03, 'a', 'b', 'c'},
			wantErr: ErrStringTooLong,
		},
		{
			name:  "multibyte characters count once",
			typ:   String(2),
			input: append([]byte{0x05}, "a😀"...),
			want:  "a😀",
		},
		{
			name:    "surrogate pairs count twice",
			typ:     StringUTF16(2),
			input:   append([]byte{0x05}, "a😀"...),
			wantErr: ErrStringTooLong,
		},
		{
			name:    "invalid UTF-8",
			typ:     String(16),
			input:   []byte{0x02, 0xc3, 0x28},
			wantErr: ErrInvalidUTF8,
		},
		{
			name:    "truncated payload",
			typ:     String(16),
			input:   []byte{0x04, 'a', 'b'},
			wantErr: ErrTruncated,
		},
		{
			name:    "negative length",
			typ:     String(16),
			input:   []byte{0xff, 0xff, 0xff, 0xff, 0x0f},
			wantErr: ErrNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBytes[string](tt.input, tt.typ)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeBytes() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBytes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringRoundTripIsByteExact(t *testing.T) {
	for _, s := range []string{"", "localhost", "naïve café", "日本語", "😀😀"} {
		wire := encodeString(t, s)
		c := NewCursor(wire)
		sum, err := String(16).Summarize(c)
		if err != nil {
			t.Fatalf("Summarize(%q) error = %v", s, err)
		}
		if !bytes.Equal(String(16).ViewBytes(sum), []byte(s)) {
			t.Errorf("ViewBytes() = %q, want %q", String(16).ViewBytes(sum), s)
		}
		if !bytes.Equal(sum.Raw(), wire) {
			t.Errorf("Raw() = %x, want %x", sum.Raw(), wire)
		}
	}
}

func TestStringEncodeRejectsOversized(t *testing.T) {
	err := String(3).Encode(NewEncoder(0), "abcd")
	if !errors.Is(err, ErrOversized) {
		t.Fatalf("Encode() error = %v, want %v", err, ErrOversized)
	}
	if !strings.HasPrefix(err.Error(), "error while writing string:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestBool(t *testing.T) {
	if v, err := DecodeBytes([]byte{0x01}, Bool); err != nil || !v {
		t.Errorf("DecodeBytes(0x01) = %v, %v", v, err)
	}
	if v, err := DecodeBytes([]byte{0x00}, Bool); err != nil || v {
		t.Errorf("DecodeBytes(0x00) = %v, %v", v, err)
	}

	_, err := DecodeBytes([]byte{0x02}, Bool)
	if !errors.Is(err, ErrInvalidBool) {
		t.Fatalf("DecodeBytes(0x02) error = %v, want %v", err, ErrInvalidBool)
	}
	want := "error while reading bool (0 byte(s) from the packet frame start): invalid variant for boolean: expected 0 or 1, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestFixedWidthTruncated(t *testing.T) {
	c := NewCursor([]byte{0x00, 0x01, 0x02})
	_, err := Int64.Summarize(c)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Summarize() error = %v, want %v", err, ErrTruncated)
	}
	if c.Pos() != 0 {
		t.Errorf("Pos() = %d after failed read, want 0", c.Pos())
	}
	if !strings.Contains(err.Error(), "expected 8 byte(s), got 3") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOptionalUUID(t *testing.T) {
	id := uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	typ := Optional(UUID)

	tests := []struct {
		name  string
		value Option[uuid.UUID]
		size  int
	}{
		{"present", Some(id), 17},
		{"absent", None[uuid.UUID](), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder(0)
			if err := typ.Encode(e, tt.value); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if e.Len() != tt.size {
				t.Fatalf("encoded %d byte(s), want %d", e.Len(), tt.size)
			}
			got, err := DecodeBytes[Option[uuid.UUID]](e.Bytes(), typ)
			if err != nil {
				t.Fatalf("DecodeBytes() error = %v", err)
			}
			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArrayLimits(t *testing.T) {
	typ := Array(VarInt, 3)

	e := NewEncoder(0)
	if err := typ.Encode(e, ListOf[int32](1, 300, -1)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	list, err := DecodeBytes[List[int32]](e.Bytes(), typ)
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if diff := cmp.Diff([]int32{1, 300, -1}, list.Slice()); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}

	if err := typ.Encode(NewEncoder(0), ListOf[int32](1, 2, 3, 4)); !errors.Is(err, ErrOversized) {
		t.Errorf("Encode(4 elements) error = %v, want %v", err, ErrOversized)
	}
	if _, err := DecodeBytes[List[int32]]([]byte{0x04, 1, 2, 3, 4}, typ); !errors.Is(err, ErrArrayTooLong) {
		t.Errorf("DecodeBytes(4 elements) error = %v, want %v", err, ErrArrayTooLong)
	}
	if _, err := DecodeBytes[List[int32]]([]byte{0x7f, 1}, Array(VarInt, 0)); !errors.Is(err, ErrTruncated) {
		t.Errorf("DecodeBytes(count past end) error = %v, want %v", err, ErrTruncated)
	}
}

func TestArrayOfEmptyElements(t *testing.T) {
	typ := Array[RecordView](NewRecord("Empty"), 0)

	list, err := DecodeBytes[List[RecordView]]([]byte{0x03}, typ)
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if list.Len() != 3 {
		t.Errorf("Len() = %d, want 3", list.Len())
	}

	e := NewEncoder(0)
	e.WriteVarInt(MaxArrayLen + 1)
	if _, err := DecodeBytes[List[RecordView]](e.Bytes(), typ); !errors.Is(err, ErrArrayTooLong) {
		t.Errorf("DecodeBytes(MaxArrayLen+1) error = %v, want %v", err, ErrArrayTooLong)
	}

	bytesList, err := DecodeBytes[List[[]byte]]([]byte{0x02, 'a', 'b'}, Array(TrailingBytes, 0))
	if err != nil {
		t.Fatalf("DecodeBytes(trailing) error = %v", err)
	}
	if bytesList.Len() != 2 || string(bytesList.At(0)) != "ab" || len(bytesList.At(1)) != 0 {
		t.Errorf("trailing elements = %q, want [\"ab\" \"\"]", bytesList.Slice())
	}
}

func TestVarUint(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint32
		wantErr error
	}{
		{"zero", []byte{0x00}, 0, nil},
		{"largest", []byte{0xff, 0xff, 0xff, 0xff, 0x07}, math.MaxInt32, nil},
		{"negative", []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0, ErrNegative},
		{"too big", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, 0, ErrVarIntTooBig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeBytes[uint32](tt.input, VarUint)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeBytes() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBytes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeBytes() = %d, want %d", got, tt.want)
			}

			e := NewEncoder(0)
			if err := VarUint.Encode(e, got); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(e.Bytes(), tt.input) {
				t.Errorf("Encode() = % x, want % x", e.Bytes(), tt.input)
			}
		})
	}

	if err := VarUint.Encode(NewEncoder(0), math.MaxInt32+1); !errors.Is(err, ErrOversized) {
		t.Errorf("Encode(MaxInt32+1) error = %v, want %v", err, ErrOversized)
	}
}

func TestSetPosReentry(t *testing.T) {
	e := NewEncoder(0)
	String(16).Encode(e, "first")
	String(16).Encode(e, "second")

	c := NewCursor(e.Bytes())
	if _, err := String(16).Summarize(c); err != nil {
		t.Fatalf("Summarize(first) error = %v", err)
	}
	stored := c.Pos()
	s1, err := String(16).Summarize(c)
	if err != nil {
		t.Fatalf("Summarize(second) error = %v", err)
	}

	c.SetPos(stored)
	s2, err := String(16).Summarize(c)
	if err != nil {
		t.Fatalf("Summarize after SetPos error = %v", err)
	}
	if s1.Start() != s2.Start() || s1.End() != s2.End() {
		t.Errorf("re-entered summary spans [%d,%d), want [%d,%d)", s2.Start(), s2.End(), s1.Start(), s1.End())
	}
	if got := String(16).View(s2); got != "second" {
		t.Errorf("View() = %q, want %q", got, "second")
	}

	for _, p := range []int{-1, len(e.Bytes()) + 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("SetPos(%d) did not panic", p)
				}
			}()
			c.SetPos(p)
		}()
	}
}

func TestTrailingData(t *testing.T) {
	_, err := DecodeBytes([]byte{0x01, 0x02}, VarInt)
	if !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("DecodeBytes() error = %v, want %v", err, ErrTrailingBytes)
	}
	want := "error while reading VarInt (1 byte(s) from the packet frame start): expected end of buffer but 1 byte(s) are remaining"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSkipRejectsForeignSession(t *testing.T) {
	wire := []byte{0x05}
	s, err := VarInt.Summarize(NewCursor(wire))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Skip() with a summary from another session did not panic")
		}
	}()
	NewCursor(wire).Skip(s)
}
