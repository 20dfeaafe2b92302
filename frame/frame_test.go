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

package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"
)

func TestFrameRoundTrip(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	Write(buf, TypeMethod, 1, []byte("hello"))

	fr, n, err := Read(buf.B)
	require.NoError(t, err)
	require.Equal(t, len(buf.B), n)
	require.Equal(t, TypeMethod, fr.Type)
	require.Equal(t, uint16(1), fr.Channel)
	require.Equal(t, []byte("hello"), fr.Payload)
}

func TestFrameNeedMoreOnShortHeader(t *testing.T) {
	_, _, err := Read([]byte{0x01, 0x00})
	require.ErrorIs(t, err, ErrNeedMore)
}

func TestFrameNeedMoreOnShortPayload(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	Write(buf, TypeMethod, 0, []byte("payload"))
	_, _, err := Read(buf.B[:len(buf.B)-2])
	require.ErrorIs(t, err, ErrNeedMore)
}

func TestFrameMalformedEnd(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	Write(buf, TypeMethod, 0, []byte("x"))
	buf.B[len(buf.B)-1] = 0x00
	_, _, err := Read(buf.B)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestMethodPayloadRoundTrip(t *testing.T) {
	b := EncodeMethod(10, 10, []byte{0x01, 0x02})
	classID, methodID, args, err := DecodeMethod(b)
	require.NoError(t, err)
	require.Equal(t, uint16(10), classID)
	require.Equal(t, uint16(10), methodID)
	require.Equal(t, []byte{0x01, 0x02}, args)
}

func TestHeaderPayloadRoundTrip(t *testing.T) {
	prop := []byte("content-type-bytes")
	b := EncodeHeader(60, 1024, 0x8000, prop)

	hp, err := DecodeHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint16(60), hp.ClassID)
	require.Equal(t, uint64(1024), hp.BodySize)
	require.Equal(t, uint16(0x8000), hp.Flags)
	require.Equal(t, prop, hp.PropData)
}
