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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

func TestValueRoundTrip(t *testing.T) {
	values := []Value{
		NewBoolean(true),
		NewShortShortInt(-12),
		NewShortShortUint(200),
		NewShortInt(-1000),
		NewShortUint(50000),
		NewLongInt(-100000),
		NewLongUint(4000000000),
		NewLongLongInt(-1 << 40),
		NewLongLongUint(1 << 50),
		NewFloat(1.5),
		NewDouble(2.5),
		NewShortString("hi"),
		NewLongString([]byte("binary\x00safe")),
		NewTimestamp(1700000000),
		NewVoid(),
		NewFieldArray(Array{NewBoolean(false), NewLongInt(7)}),
		NewFieldTable(Table{{Name: "x", Value: NewShortString("y")}}),
	}

	for _, v := range values {
		buf := &bytebufferpool.ByteBuffer{}
		require.NoError(t, Encode(buf, v))

		got, n, err := Decode(buf.B)
		require.NoError(t, err)
		require.Equal(t, len(buf.B), n)
		require.Equal(t, v.Kind(), got.Kind())
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	_, _, err := Decode([]byte{'?'})
	require.ErrorIs(t, err, ErrUnknownTag)
}

func TestDecimalUnsupported(t *testing.T) {
	_, _, err := Decode([]byte{'D', 0x02, 0x00, 0x00, 0x01, 0x23})
	require.ErrorIs(t, err, ErrDecimalUnsupported)
}

func TestTableGetFirstMatch(t *testing.T) {
	tbl := Table{
		{Name: "a", Value: NewLongInt(1)},
		{Name: "a", Value: NewLongInt(2)},
	}
	v, ok := tbl.Get("a")
	require.True(t, ok)
	n, _ := v.LongInt()
	require.Equal(t, int32(1), n)

	_, ok = tbl.Get("missing")
	require.False(t, ok)
}

func TestTableRoundTrip(t *testing.T) {
	tbl := Table{
		{Name: "str", Value: NewShortString("value")},
		{Name: "num", Value: NewLongInt(42)},
		{Name: "nested", Value: NewFieldTable(Table{{Name: "inner", Value: NewBoolean(true)}})},
	}

	buf := &bytebufferpool.ByteBuffer{}
	require.NoError(t, EncodeTable(buf, tbl))

	got, err := DecodeTable(buf.B)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "str", got[0].Name)
}

func TestArgBitPacking(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	w := NewArgWriter(buf)
	w.WriteBit(true)
	w.WriteBit(false)
	w.WriteBit(true)
	w.Flush()
	w.WriteLong(123)

	r := NewArgReader(buf.B)
	b1, err := r.ReadBit()
	require.NoError(t, err)
	require.True(t, b1)
	b2, err := r.ReadBit()
	require.NoError(t, err)
	require.False(t, b2)
	b3, err := r.ReadBit()
	require.NoError(t, err)
	require.True(t, b3)

	v, err := r.ReadLong()
	require.NoError(t, err)
	require.Equal(t, uint32(123), v)
}

func TestArgReaderNeedMore(t *testing.T) {
	r := NewArgReader([]byte{0x00, 0x01})
	_, err := r.ReadLong()
	require.Error(t, err)
}
