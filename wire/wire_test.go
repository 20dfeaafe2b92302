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

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

func TestIntRoundTrip(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	WriteUint16(buf, 0xBEEF)
	WriteUint32(buf, 0xDEADBEEF)
	WriteUint64(buf, 0x0102030405060708)

	b := buf.B
	v16, n, err := ReadUint16(b)
	require.NoError(t, err)
	require.Equal(t, uint16(0xBEEF), v16)
	b = b[n:]

	v32, n, err := ReadUint32(b)
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), v32)
	b = b[n:]

	v64, _, err := ReadUint64(b)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v64)
}

func TestFloatRoundTripBigEndian(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	WriteFloat32(buf, 3.14)
	WriteFloat64(buf, 2.71828)
	require.Equal(t, []byte{0x40, 0x48, 0xF5, 0xC3}, buf.B[:4])

	v32, n, err := ReadFloat32(buf.B)
	require.NoError(t, err)
	require.InDelta(t, 3.14, v32, 0.0001)

	v64, _, err := ReadFloat64(buf.B[n:])
	require.NoError(t, err)
	require.InDelta(t, 2.71828, v64, 0.00001)
}

func TestShortStringRoundTrip(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	require.NoError(t, WriteShortString(buf, "hello"))

	s, n, err := ReadShortString(buf.B)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
	require.Equal(t, len(buf.B), n)
}

func TestShortStringTooLong(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	err := WriteShortString(buf, string(make([]byte, 256)))
	require.Error(t, err)
}

func TestLongStringRoundTrip(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	payload := []byte{0x00, 0xFF, 'h', 'i', 0x00}
	WriteLongString(buf, payload)

	got, n, err := ReadLongString(buf.B)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, len(buf.B), n)
}

func TestReadNeedMore(t *testing.T) {
	_, _, err := ReadUint16([]byte{0x01})
	require.ErrorIs(t, err, ErrNeedMore)

	_, _, err = ReadUint32([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrNeedMore)

	_, _, err = ReadUint64(make([]byte, 7))
	require.ErrorIs(t, err, ErrNeedMore)

	_, _, err = ReadShortString([]byte{0x05, 'h', 'i'})
	require.ErrorIs(t, err, ErrNeedMore)

	_, _, err = ReadLongString([]byte{0x00, 0x00, 0x00, 0x05, 'h', 'i'})
	require.ErrorIs(t, err, ErrNeedMore)
}
