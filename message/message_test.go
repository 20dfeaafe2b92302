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

package message

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/field"
)

func TestPropertiesRoundTrip(t *testing.T) {
	var p Properties
	p.SetContentType("text/plain").
		SetContentEncoding("utf-8").
		SetHeaders(field.Table{{Name: "k", Value: field.NewShortString("v")}}).
		SetDeliveryMode(2).
		SetCorrelationID("corr-1").
		SetReplyTo("replies").
		SetExpiration("60000").
		SetMessageID("msg-1").
		SetTimestamp(1700000000).
		SetType("event").
		SetUserID("guest").
		SetAppID("app-1")
	_, err := p.SetPriority(5)
	require.NoError(t, err)

	buf := &bytebufferpool.ByteBuffer{}
	flags, err := EncodeProperties(buf, p)
	require.NoError(t, err)

	got, err := DecodeProperties(flags, buf.B)
	require.NoError(t, err)
	require.Equal(t, *p.ContentType, *got.ContentType)
	require.Equal(t, *p.Priority, *got.Priority)
	require.Equal(t, *p.AppID, *got.AppID)
}

func TestPropertiesEmpty(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	flags, err := EncodeProperties(buf, Properties{})
	require.NoError(t, err)
	require.Equal(t, uint16(0), flags)

	got, err := DecodeProperties(0, nil)
	require.NoError(t, err)
	require.Nil(t, got.ContentType)
}

func TestInvalidPriority(t *testing.T) {
	var p Properties
	_, err := p.SetPriority(10)
	require.ErrorIs(t, err, ErrInvalidPriority)
}

func TestPropertyContinuationRejected(t *testing.T) {
	_, err := DecodeProperties(0x0001, nil)
	require.ErrorIs(t, err, ErrPropertyContinuation)
}

func TestReservedClusterIDSkipped(t *testing.T) {
	buf := &bytebufferpool.ByteBuffer{}
	_ = buf.WriteByte(0x04)
	_, _ = buf.WriteString("abcd")

	got, err := DecodeProperties(0x0004, buf.B)
	require.NoError(t, err)
	require.Nil(t, got.ContentType)
}

func TestMessageOwnership(t *testing.T) {
	src := []byte{1, 2, 3}
	owned := NewOwned(Properties{}, src)
	require.True(t, owned.Owned())

	cp := NewCopy(Properties{}, src)
	src[0] = 99
	require.Equal(t, byte(1), cp.Data[0])

	borrowed := NewBorrowed(Properties{}, src)
	require.False(t, borrowed.Owned())
}
