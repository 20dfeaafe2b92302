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

// ArgReader decodes a variadic method argument list: a flat sequence of
// domain-typed values (short/long strings, integers, field tables, and
// runs of bit flags packed 8-to-an-octet) with no per-field tag byte.
// The caller must know the declared shape of the method it is decoding;
// ArgReader only tracks the read cursor and short-read errors.
//
// Every Read* method stops and returns wire.ErrNeedMore on the first
// short read, leaving the reader's position unchanged so the caller can
// safely abandon a partially-decoded method on error without needing to
// release anything (Go's garbage collector reclaims any Values already
// produced).
type ArgReader struct {
	b        []byte
	pos      int
	bitByte  uint8
	bitsLeft int
}

func NewArgReader(b []byte) *ArgReader {
	return &ArgReader{b: b}
}

// Remaining returns the bytes not yet consumed.
func (r *ArgReader) Remaining() []byte {
	return r.b[r.pos:]
}

func (r *ArgReader) ReadOctet() (uint8, error) {
	v, n, err := wire.ReadUint8(r.b[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadShort() (uint16, error) {
	v, n, err := wire.ReadUint16(r.b[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadLong() (uint32, error) {
	v, n, err := wire.ReadUint32(r.b[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadLongLong() (uint64, error) {
	v, n, err := wire.ReadUint64(r.b[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadShortString() (string, error) {
	v, n, err := wire.ReadShortString(r.b[r.pos:])
	if err != nil {
		return "", err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadLongString() ([]byte, error) {
	v, n, err := wire.ReadLongString(r.b[r.pos:])
	if err != nil {
		return nil, err
	}
	r.pos += n
	r.bitsLeft = 0
	return v, nil
}

func (r *ArgReader) ReadTable() (Table, error) {
	raw, n, err := wire.ReadLongString(r.b[r.pos:])
	if err != nil {
		return nil, err
	}
	t, err := DecodeTable(raw)
	if err != nil {
		return nil, err
	}
	r.pos += n
	r.bitsLeft = 0
	return t, nil
}

// ReadBit reads a single bit. Consecutive ReadBit calls share one octet on
// the wire, matching AMQP's "pack bit parameters into octets" rule; any
// non-bit read resets the packing so the next run of bits starts a fresh
// octet.
func (r *ArgReader) ReadBit() (bool, error) {
	if r.bitsLeft == 0 {
		v, n, err := wire.ReadUint8(r.b[r.pos:])
		if err != nil {
			return false, err
		}
		r.pos += n
		r.bitByte = v
		r.bitsLeft = 8
	}
	bit := r.bitByte&0x01 != 0
	r.bitByte >>= 1
	r.bitsLeft--
	return bit, nil
}

// ArgWriter composes a method argument list. It mirrors ArgReader's bit
// packing: consecutive WriteBit calls accumulate into one octet, flushed
// on the next non-bit write or on Flush.
type ArgWriter struct {
	buf      *bytebufferpool.ByteBuffer
	bitByte  uint8
	bitCount int
}

func NewArgWriter(buf *bytebufferpool.ByteBuffer) *ArgWriter {
	return &ArgWriter{buf: buf}
}

func (w *ArgWriter) flushBits() {
	if w.bitCount > 0 {
		wire.WriteUint8(w.buf, w.bitByte)
		w.bitByte = 0
		w.bitCount = 0
	}
}

func (w *ArgWriter) WriteOctet(v uint8) {
	w.flushBits()
	wire.WriteUint8(w.buf, v)
}

func (w *ArgWriter) WriteShort(v uint16) {
	w.flushBits()
	wire.WriteUint16(w.buf, v)
}

func (w *ArgWriter) WriteLong(v uint32) {
	w.flushBits()
	wire.WriteUint32(w.buf, v)
}

func (w *ArgWriter) WriteLongLong(v uint64) {
	w.flushBits()
	wire.WriteUint64(w.buf, v)
}

func (w *ArgWriter) WriteShortString(s string) error {
	w.flushBits()
	return wire.WriteShortString(w.buf, s)
}

func (w *ArgWriter) WriteLongString(b []byte) {
	w.flushBits()
	wire.WriteLongString(w.buf, b)
}

func (w *ArgWriter) WriteTable(t Table) error {
	w.flushBits()
	inner := &bytebufferpool.ByteBuffer{}
	if err := EncodeTable(inner, t); err != nil {
		return err
	}
	wire.WriteLongString(w.buf, inner.B)
	return nil
}

func (w *ArgWriter) WriteBit(v bool) {
	if w.bitCount == 8 {
		w.flushBits()
	}
	if v {
		w.bitByte |= 1 << uint(w.bitCount)
	}
	w.bitCount++
}

// Flush must be called after the last WriteBit of a method's argument
// list to emit any partially-filled bit octet.
func (w *ArgWriter) Flush() {
	w.flushBits()
}
