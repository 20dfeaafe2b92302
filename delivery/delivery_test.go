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

package delivery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/packetd/rmqcore/message"
)

func TestDeliverFullCycle(t *testing.T) {
	r := New()
	require.True(t, r.Idle())

	r.BeginDeliver("consumer-1", 1, false, "ex", "rk")
	require.False(t, r.Idle())

	complete, err := r.OnHeader(5, message.Properties{})
	require.NoError(t, err)
	require.False(t, complete)

	complete, err = r.OnBody([]byte("hel"))
	require.NoError(t, err)
	require.False(t, complete)

	complete, err = r.OnBody([]byte("lo"))
	require.NoError(t, err)
	require.True(t, complete)

	d := r.Take()
	require.Equal(t, "consumer-1", d.ConsumerTag)
	require.Equal(t, []byte("hello"), d.Message.Data)
	require.True(t, r.Idle())
}

func TestZeroBodyDelivery(t *testing.T) {
	r := New()
	r.BeginDeliver("c", 1, false, "e", "rk")
	complete, err := r.OnHeader(0, message.Properties{})
	require.NoError(t, err)
	require.True(t, complete)
	d := r.Take()
	require.Empty(t, d.Message.Data)
}

func TestZeroByteBodyFramesMidDelivery(t *testing.T) {
	r := New()
	r.BeginDeliver("c", 1, false, "e", "rk")
	_, err := r.OnHeader(2, message.Properties{})
	require.NoError(t, err)

	complete, err := r.OnBody(nil)
	require.NoError(t, err)
	require.False(t, complete)

	complete, err = r.OnBody([]byte("hi"))
	require.NoError(t, err)
	require.True(t, complete)
}

func TestNoDeliveryError(t *testing.T) {
	r := New()
	_, err := r.OnHeader(0, message.Properties{})
	require.ErrorIs(t, err, ErrNoDelivery)
}

func TestContentBeforeHeaderError(t *testing.T) {
	r := New()
	r.BeginDeliver("c", 1, false, "e", "rk")
	_, err := r.OnBody([]byte("x"))
	require.ErrorIs(t, err, ErrContentBeforeHeader)
}

func TestDuplicateHeaderError(t *testing.T) {
	r := New()
	r.BeginDeliver("c", 1, false, "e", "rk")
	_, err := r.OnHeader(5, message.Properties{})
	require.NoError(t, err)
	_, err = r.OnHeader(5, message.Properties{})
	require.ErrorIs(t, err, ErrDuplicateHeader)
}

func TestBodyOverflowError(t *testing.T) {
	r := New()
	r.BeginDeliver("c", 1, false, "e", "rk")
	_, err := r.OnHeader(2, message.Properties{})
	require.NoError(t, err)
	_, err = r.OnBody([]byte("toolong"))
	require.ErrorIs(t, err, ErrBodyOverflow)
}

func TestReturnCycle(t *testing.T) {
	r := New()
	r.BeginReturn(312, "no route", "ex", "rk")
	complete, err := r.OnHeader(0, message.Properties{})
	require.NoError(t, err)
	require.True(t, complete)
	d := r.Take()
	require.Equal(t, KindReturn, d.Kind)
	require.Equal(t, uint16(312), d.ReplyCode)
}
