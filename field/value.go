// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package field implements the AMQP 0-9-1 field-value tagged union, field
// tables and field arrays used by method argument lists and message
// properties. Grounded on protocol/pamqp/classmethod.go's op/fieldRequest
// decode loop, generalized here from "skip known offsets" to "decode
// every declared type".
package field

import (
	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	return errors.Errorf("field: "+format, args...)
}

// ErrUnknownTag is returned when a field value's leading tag byte does not
// match any of the 18 known AMQP 0-9-1 field types.
var ErrUnknownTag = errors.New("field: unknown tag")

// ErrDecimalUnsupported is returned by Decode when it encounters tag 'D'
// (decimal). Encode panics instead, since an AMQP decimal is never
// produced internally; see Kind.
var ErrDecimalUnsupported = errors.New("field: decimal values are not supported")

// Kind identifies which of the 18 AMQP field-value variants a Value holds.
// Value is a sealed variant type: callers construct instances only
// through the New* constructors below, never by setting struct fields
// directly, so Kind and the populated field always agree.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindShortShortInt
	KindShortShortUint
	KindShortInt
	KindShortUint
	KindLongInt
	KindLongUint
	KindLongLongInt
	KindLongLongUint
	KindFloat
	KindDouble
	KindShortString
	KindLongString
	KindFieldArray
	KindTimestamp
	KindFieldTable
	KindVoid
	// KindDecimal names the decimal wire type, which this package does
	// not support: Decode rejects it (so a table or array containing one
	// fails to decode) and it cannot be constructed or re-encoded; see
	// ErrDecimalUnsupported.
	KindDecimal
)

// tag bytes per the AMQP 0-9-1 "domain types" table.
const (
	tagBoolean         = 't'
	tagShortShortInt   = 'b'
	tagShortShortUint  = 'B'
	tagShortInt        = 'U'
	tagShortUint       = 'u'
	tagLongInt         = 'I'
	tagLongUint        = 'i'
	tagLongLongInt     = 'L'
	tagLongLongUint    = 'l'
	tagFloat           = 'f'
	tagDouble          = 'd'
	tagDecimal         = 'D'
	tagShortString     = 's'
	tagLongString      = 'S'
	tagFieldArray      = 'A'
	tagTimestamp       = 'T'
	tagFieldTable      = 'F'
	tagVoid            = 'V'
)

// Value is a single AMQP field value. The zero Value is a KindBoolean
// holding false; use NewVoid for a void value.
type Value struct {
	kind Kind

	b  bool
	i8 int8
	u8 uint8
	i  int64
	u  uint64
	f4 float32
	f8 float64
	s  string
	bs []byte
	a  Array
	t  Table
}

func (v Value) Kind() Kind { return v.kind }

func NewBoolean(b bool) Value                { return Value{kind: KindBoolean, b: b} }
func NewShortShortInt(v int8) Value          { return Value{kind: KindShortShortInt, i8: v} }
func NewShortShortUint(v uint8) Value        { return Value{kind: KindShortShortUint, u8: v} }
func NewShortInt(v int16) Value              { return Value{kind: KindShortInt, i: int64(v)} }
func NewShortUint(v uint16) Value            { return Value{kind: KindShortUint, u: uint64(v)} }
func NewLongInt(v int32) Value               { return Value{kind: KindLongInt, i: int64(v)} }
func NewLongUint(v uint32) Value             { return Value{kind: KindLongUint, u: uint64(v)} }
func NewLongLongInt(v int64) Value           { return Value{kind: KindLongLongInt, i: v} }
func NewLongLongUint(v uint64) Value         { return Value{kind: KindLongLongUint, u: v} }
func NewFloat(v float32) Value               { return Value{kind: KindFloat, f4: v} }
func NewDouble(v float64) Value              { return Value{kind: KindDouble, f8: v} }
func NewShortString(v string) Value          { return Value{kind: KindShortString, s: v} }
func NewLongString(v []byte) Value           { return Value{kind: KindLongString, bs: v} }
func NewFieldArray(v Array) Value            { return Value{kind: KindFieldArray, a: v} }
func NewTimestamp(v uint64) Value            { return Value{kind: KindTimestamp, u: v} }
func NewFieldTable(v Table) Value            { return Value{kind: KindFieldTable, t: v} }
func NewVoid() Value                         { return Value{kind: KindVoid} }

func (v Value) Boolean() (bool, bool)       { return v.b, v.kind == KindBoolean }
func (v Value) ShortShortInt() (int8, bool) { return v.i8, v.kind == KindShortShortInt }
func (v Value) ShortShortUint() (uint8, bool) {
	return v.u8, v.kind == KindShortShortUint
}
func (v Value) ShortInt() (int16, bool)   { return int16(v.i), v.kind == KindShortInt }
func (v Value) ShortUint() (uint16, bool) { return uint16(v.u), v.kind == KindShortUint }
func (v Value) LongInt() (int32, bool)    { return int32(v.i), v.kind == KindLongInt }
func (v Value) LongUint() (uint32, bool)  { return uint32(v.u), v.kind == KindLongUint }
func (v Value) LongLongInt() (int64, bool) {
	return v.i, v.kind == KindLongLongInt
}
func (v Value) LongLongUint() (uint64, bool) {
	return v.u, v.kind == KindLongLongUint
}
func (v Value) Float() (float32, bool)  { return v.f4, v.kind == KindFloat }
func (v Value) Double() (float64, bool) { return v.f8, v.kind == KindDouble }
func (v Value) ShortString() (string, bool) {
	return v.s, v.kind == KindShortString
}
func (v Value) LongString() ([]byte, bool) { return v.bs, v.kind == KindLongString }
func (v Value) FieldArray() (Array, bool)  { return v.a, v.kind == KindFieldArray }
func (v Value) Timestamp() (uint64, bool)  { return v.u, v.kind == KindTimestamp }
func (v Value) FieldTable() (Table, bool)  { return v.t, v.kind == KindFieldTable }
