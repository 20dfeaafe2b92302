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

package field

import (
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/wire"
)

// Decode reads one tagged field value from b, returning the value and the
// number of bytes it consumed. It never reads past the declared length of
// a nested string/table/array, so a truncated buffer always yields
// wire.ErrNeedMore rather than a short, wrong result.
func Decode(b []byte) (Value, int, error) {
	if len(b) < 1 {
		return Value{}, 0, wire.ErrNeedMore
	}
	tag := b[0]
	rest := b[1:]

	switch tag {
	case tagBoolean:
		v, n, err := wire.ReadUint8(rest)
		return NewBoolean(v != 0), 1 + n, err
	case tagShortShortInt:
		v, n, err := wire.ReadInt8(rest)
		return NewShortShortInt(v), 1 + n, err
	case tagShortShortUint:
		v, n, err := wire.ReadUint8(rest)
		return NewShortShortUint(v), 1 + n, err
	case tagShortInt:
		v, n, err := wire.ReadInt16(rest)
		return NewShortInt(v), 1 + n, err
	case tagShortUint:
		v, n, err := wire.ReadUint16(rest)
		return NewShortUint(v), 1 + n, err
	case tagLongInt:
		v, n, err := wire.ReadInt32(rest)
		return NewLongInt(v), 1 + n, err
	case tagLongUint:
		v, n, err := wire.ReadUint32(rest)
		return NewLongUint(v), 1 + n, err
	case tagLongLongInt:
		v, n, err := wire.ReadInt64(rest)
		return NewLongLongInt(v), 1 + n, err
	case tagLongLongUint:
		v, n, err := wire.ReadUint64(rest)
		return NewLongLongUint(v), 1 + n, err
	case tagFloat:
		v, n, err := wire.ReadFloat32(rest)
		return NewFloat(v), 1 + n, err
	case tagDouble:
		v, n, err := wire.ReadFloat64(rest)
		return NewDouble(v), 1 + n, err
	case tagDecimal:
		// scale (1 byte) + 4-byte signed value. A complete decimal is
		// reported as unsupported, which also makes a containing table or
		// array fail to decode.
		if len(rest) < 5 {
			return Value{}, 0, wire.ErrNeedMore
		}
		return Value{}, 0, ErrDecimalUnsupported
	case tagShortString:
		v, n, err := wire.ReadShortString(rest)
		return NewShortString(v), 1 + n, err
	case tagLongString:
		v, n, err := wire.ReadLongString(rest)
		return NewLongString(v), 1 + n, err
	case tagFieldArray:
		raw, n, err := wire.ReadLongString(rest)
		if err != nil {
			return Value{}, 0, err
		}
		a, err := DecodeArray(raw)
		if err != nil {
			return Value{}, 0, err
		}
		return NewFieldArray(a), 1 + n, nil
	case tagTimestamp:
		v, n, err := wire.ReadUint64(rest)
		return NewTimestamp(v), 1 + n, err
	case tagFieldTable:
		raw, n, err := wire.ReadLongString(rest)
		if err != nil {
			return Value{}, 0, err
		}
		t, err := DecodeTable(raw)
		if err != nil {
			return Value{}, 0, err
		}
		return NewFieldTable(t), 1 + n, nil
	case tagVoid:
		return NewVoid(), 1, nil
	default:
		return Value{}, 0, ErrUnknownTag
	}
}

// Encode appends the tagged wire representation of v to buf.
//
// Encode panics on KindDecimal because no constructor in this package
// ever produces one: decimals only arise from Decode, which reports
// ErrDecimalUnsupported instead of returning a usable Value, so a
// well-behaved caller can never hold one to encode.
func Encode(buf *bytebufferpool.ByteBuffer, v Value) error {
	switch v.kind {
	case KindBoolean:
		_ = buf.WriteByte(tagBoolean)
		if v.b {
			wire.WriteUint8(buf, 1)
		} else {
			wire.WriteUint8(buf, 0)
		}
	case KindShortShortInt:
		_ = buf.WriteByte(tagShortShortInt)
		wire.WriteInt8(buf, v.i8)
	case KindShortShortUint:
		_ = buf.WriteByte(tagShortShortUint)
		wire.WriteUint8(buf, v.u8)
	case KindShortInt:
		_ = buf.WriteByte(tagShortInt)
		wire.WriteInt16(buf, int16(v.i))
	case KindShortUint:
		_ = buf.WriteByte(tagShortUint)
		wire.WriteUint16(buf, uint16(v.u))
	case KindLongInt:
		_ = buf.WriteByte(tagLongInt)
		wire.WriteInt32(buf, int32(v.i))
	case KindLongUint:
		_ = buf.WriteByte(tagLongUint)
		wire.WriteUint32(buf, uint32(v.u))
	case KindLongLongInt:
		_ = buf.WriteByte(tagLongLongInt)
		wire.WriteInt64(buf, v.i)
	case KindLongLongUint:
		_ = buf.WriteByte(tagLongLongUint)
		wire.WriteUint64(buf, v.u)
	case KindFloat:
		_ = buf.WriteByte(tagFloat)
		wire.WriteFloat32(buf, v.f4)
	case KindDouble:
		_ = buf.WriteByte(tagDouble)
		wire.WriteFloat64(buf, v.f8)
	case KindShortString:
		_ = buf.WriteByte(tagShortString)
		return wire.WriteShortString(buf, v.s)
	case KindLongString:
		_ = buf.WriteByte(tagLongString)
		wire.WriteLongString(buf, v.bs)
	case KindFieldArray:
		_ = buf.WriteByte(tagFieldArray)
		inner := &bytebufferpool.ByteBuffer{}
		if err := EncodeArray(inner, v.a); err != nil {
			return err
		}
		wire.WriteLongString(buf, inner.B)
	case KindTimestamp:
		_ = buf.WriteByte(tagTimestamp)
		wire.WriteUint64(buf, v.u)
	case KindFieldTable:
		_ = buf.WriteByte(tagFieldTable)
		inner := &bytebufferpool.ByteBuffer{}
		if err := EncodeTable(inner, v.t); err != nil {
			return err
		}
		wire.WriteLongString(buf, inner.B)
	case KindVoid:
		_ = buf.WriteByte(tagVoid)
	case KindDecimal:
		panic("field: cannot encode a decimal value")
	default:
		return newError("cannot encode value of unknown kind %d", v.kind)
	}
	return nil
}
