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

// Package wire implements the AMQP 0-9-1 byte-level codec: fixed-width
// big-endian integers and floats, and length-prefixed short/long strings.
// Every decode function reports ErrNeedMore rather than panicking or
// reading out of bounds when the supplied slice is short, so callers
// holding a partial TCP read can simply wait for more bytes.
package wire

import (
	"math"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

// ErrNeedMore indicates the supplied buffer does not yet hold a complete
// value; the caller should retry once more bytes have arrived.
var ErrNeedMore = errors.New("wire: need more data")

func newError(format string, args ...any) error {
	return errors.Errorf("wire: "+format, args...)
}

func ReadUint8(b []byte) (uint8, int, error) {
	if len(b) < 1 {
		return 0, 0, ErrNeedMore
	}
	return b[0], 1, nil
}

func ReadInt8(b []byte) (int8, int, error) {
	v, n, err := ReadUint8(b)
	return int8(v), n, err
}

func ReadUint16(b []byte) (uint16, int, error) {
	if len(b) < 2 {
		return 0, 0, ErrNeedMore
	}
	return uint16(b[0])<<8 | uint16(b[1]), 2, nil
}

func ReadInt16(b []byte) (int16, int, error) {
	v, n, err := ReadUint16(b)
	return int16(v), n, err
}

func ReadUint32(b []byte) (uint32, int, error) {
	if len(b) < 4 {
		return 0, 0, ErrNeedMore
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4, nil
}

func ReadInt32(b []byte) (int32, int, error) {
	v, n, err := ReadUint32(b)
	return int32(v), n, err
}

func ReadUint64(b []byte) (uint64, int, error) {
	if len(b) < 8 {
		return 0, 0, ErrNeedMore
	}
	v := uint64(0)
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v, 8, nil
}

func ReadInt64(b []byte) (int64, int, error) {
	v, n, err := ReadUint64(b)
	return int64(v), n, err
}

// ReadFloat32 decodes a true big-endian IEEE-754 single. The original
// implementation this protocol was distilled from writes floats in the
// host's native byte order, which on a little-endian host disagrees with
// the big-endian integers surrounding it on the wire; this codec always
// treats the 4 bytes as big-endian, matching every other AMQP field.
func ReadFloat32(b []byte) (float32, int, error) {
	bits, n, err := ReadUint32(b)
	if err != nil {
		return 0, 0, err
	}
	return math.Float32frombits(bits), n, nil
}

// ReadFloat64 is ReadFloat32's 8-byte counterpart.
func ReadFloat64(b []byte) (float64, int, error) {
	bits, n, err := ReadUint64(b)
	if err != nil {
		return 0, 0, err
	}
	return math.Float64frombits(bits), n, nil
}

// ReadShortString decodes a 1-byte-length-prefixed string (max 255 bytes).
func ReadShortString(b []byte) (string, int, error) {
	if len(b) < 1 {
		return "", 0, ErrNeedMore
	}
	n := int(b[0])
	if len(b) < 1+n {
		return "", 0, ErrNeedMore
	}
	return string(b[1 : 1+n]), 1 + n, nil
}

// ReadLongString decodes a 4-byte-length-prefixed binary-safe string.
func ReadLongString(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, ErrNeedMore
	}
	n, _, _ := ReadUint32(b)
	if len(b) < 4+int(n) {
		return nil, 0, ErrNeedMore
	}
	out := make([]byte, n)
	copy(out, b[4:4+n])
	return out, 4 + int(n), nil
}

func WriteUint8(buf *bytebufferpool.ByteBuffer, v uint8) {
	_ = buf.WriteByte(v)
}

func WriteInt8(buf *bytebufferpool.ByteBuffer, v int8) {
	WriteUint8(buf, uint8(v))
}

func WriteUint16(buf *bytebufferpool.ByteBuffer, v uint16) {
	_, _ = buf.Write([]byte{byte(v >> 8), byte(v)})
}

func WriteInt16(buf *bytebufferpool.ByteBuffer, v int16) {
	WriteUint16(buf, uint16(v))
}

func WriteUint32(buf *bytebufferpool.ByteBuffer, v uint32) {
	_, _ = buf.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

func WriteInt32(buf *bytebufferpool.ByteBuffer, v int32) {
	WriteUint32(buf, uint32(v))
}

func WriteUint64(buf *bytebufferpool.ByteBuffer, v uint64) {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	_, _ = buf.Write(b)
}

func WriteInt64(buf *bytebufferpool.ByteBuffer, v int64) {
	WriteUint64(buf, uint64(v))
}

func WriteFloat32(buf *bytebufferpool.ByteBuffer, v float32) {
	WriteUint32(buf, math.Float32bits(v))
}

func WriteFloat64(buf *bytebufferpool.ByteBuffer, v float64) {
	WriteUint64(buf, math.Float64bits(v))
}

// WriteShortString writes a 1-byte-length-prefixed string. It reports an
// error rather than silently truncating if s is too long to fit the
// 1-byte length prefix.
func WriteShortString(buf *bytebufferpool.ByteBuffer, s string) error {
	if len(s) > 255 {
		return newError("short string too long: %d bytes", len(s))
	}
	WriteUint8(buf, uint8(len(s)))
	_, _ = buf.WriteString(s)
	return nil
}

// WriteLongString writes a 4-byte-length-prefixed binary-safe string.
func WriteLongString(buf *bytebufferpool.ByteBuffer, b []byte) {
	WriteUint32(buf, uint32(len(b)))
	_, _ = buf.Write(b)
}
