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

package client

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/classid"
	"github.com/packetd/rmqcore/delivery"
	"github.com/packetd/rmqcore/field"
	"github.com/packetd/rmqcore/frame"
	"github.com/packetd/rmqcore/message"
)

type fakeWriter struct {
	frames []*frame.Frame
}

func (f *fakeWriter) Write(p []byte) error {
	// The 8-byte AMQP protocol header sent on connect is not a frame.
	if len(p) == 8 && string(p[:4]) == "AMQP" {
		return nil
	}
	for len(p) > 0 {
		fr, n, err := frame.Read(p)
		if err != nil {
			return err
		}
		f.frames = append(f.frames, fr)
		p = p[n:]
	}
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func newReadyClient(t *testing.T) (*Client, *fakeWriter) {
	t.Helper()
	c, err := New("guest", "guest", "/")
	require.NoError(t, err)
	w := &fakeWriter{}
	c.Attach(w)
	c.OnConnected()
	// fast-forward straight to Ready for facade-level tests; the
	// handshake sequence itself is covered in package connection.
	forceReady(t, c)
	return c, w
}

func forceReady(t *testing.T, c *Client) {
	t.Helper()
	// Drive a minimal legal handshake so Conn's internal state machine
	// (unexported) reaches Ready without exposing test-only setters.
	send := func(cls, method uint16, args []byte) {
		payload := frame.EncodeMethod(cls, method, args)
		buf := &bytebufferpool.ByteBuffer{}
		frame.Write(buf, frame.TypeMethod, 0, payload)
		c.OnData(buf.B)
	}

	send(classid.Connection, classid.ConnectionStart, emptyStartArgs())
	send(classid.Connection, classid.ConnectionTune, tuneArgs())
	send(classid.Connection, classid.ConnectionOpenOk, nil)

	payload := frame.EncodeMethod(classid.Channel, classid.ChannelOpenOk, nil)
	buf := &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeMethod, 1, payload)
	c.OnData(buf.B)

	require.Equal(t, "ready", c.State().String())
}

func emptyStartArgs() []byte {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteOctet(0)
	w.WriteOctet(9)
	_ = w.WriteTable(nil)
	_ = w.WriteShortString("PLAIN")
	w.WriteLongString([]byte("en_US"))
	w.Flush()
	return buf.B
}

func tuneArgs() []byte {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0)
	w.WriteLong(131072)
	w.WriteShort(0)
	w.Flush()
	return buf.B
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New("", "guest", "/")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestPublishSendsMethodAndContent(t *testing.T) {
	c, w := newReadyClient(t)
	var props message.Properties
	props.SetContentType("text/plain")

	require.NoError(t, c.Publish("ex", "rk", false, false, props, []byte("payload")))

	var sawMethod, sawHeader, sawBody bool
	for _, fr := range w.frames {
		switch fr.Type {
		case frame.TypeMethod:
			cls, method, _, _ := frame.DecodeMethod(fr.Payload)
			if cls == classid.Basic && method == classid.BasicPublish {
				sawMethod = true
			}
		case frame.TypeHeader:
			sawHeader = true
		case frame.TypeBody:
			sawBody = true
			require.Equal(t, []byte("payload"), fr.Payload)
		}
	}
	require.True(t, sawMethod)
	require.True(t, sawHeader)
	require.True(t, sawBody)
}

func TestSubscribeRegistersConsumer(t *testing.T) {
	c, w := newReadyClient(t)
	called := false
	tag, err := c.Subscribe("q1", false, func(d delivery.Delivery) Action {
		called = true
		return ActionAck
	})
	require.NoError(t, err)
	require.Equal(t, "consumer-1", tag)

	var sawConsume bool
	for _, fr := range w.frames {
		if fr.Type == frame.TypeMethod {
			cls, method, _, _ := frame.DecodeMethod(fr.Payload)
			if cls == classid.Basic && method == classid.BasicConsume {
				sawConsume = true
			}
		}
	}
	require.True(t, sawConsume)

	// Simulate a basic.deliver + header + body for this consumer.
	deliverArgs := &bytebufferpool.ByteBuffer{}
	aw := field.NewArgWriter(deliverArgs)
	_ = aw.WriteShortString(tag)
	aw.WriteLongLong(1)
	aw.WriteBit(false)
	_ = aw.WriteShortString("ex")
	_ = aw.WriteShortString("rk")
	aw.Flush()

	payload := frame.EncodeMethod(classid.Basic, classid.BasicDeliver, deliverArgs.B)
	buf := &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeMethod, 1, payload)
	c.OnData(buf.B)

	headerPayload := frame.EncodeHeader(classid.Basic, 5, 0, nil)
	buf = &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeHeader, 1, headerPayload)
	c.OnData(buf.B)

	buf = &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeBody, 1, []byte("hello"))
	c.OnData(buf.B)

	require.True(t, called)
}

func TestUnsubscribeRemovesConsumer(t *testing.T) {
	c, _ := newReadyClient(t)
	tag, err := c.Subscribe("q1", false, func(d delivery.Delivery) Action { return ActionAck })
	require.NoError(t, err)
	require.NoError(t, c.Unsubscribe("q1"))

	_, ok := c.reg.getByTag(tag)
	require.False(t, ok)
	_, ok = c.reg.getByQueue("q1")
	require.False(t, ok)
}

func TestUnsubscribeUnknownQueue(t *testing.T) {
	c, _ := newReadyClient(t)
	require.Error(t, c.Unsubscribe("no-such-queue"))
}

func TestDeclareQueueSendsNoWait(t *testing.T) {
	c, w := newReadyClient(t)
	require.NoError(t, c.DeclareQueue("q1", QueueOptions{Durable: true}))

	var found bool
	for _, fr := range w.frames {
		if fr.Type == frame.TypeMethod {
			cls, method, args, _ := frame.DecodeMethod(fr.Payload)
			if cls == classid.Queue && method == classid.QueueDeclare {
				found = true
				r := field.NewArgReader(args)
				_, _ = r.ReadShort()       // reserved ticket
				_, _ = r.ReadShortString() // queue name
				var bits [5]bool           // passive, durable, exclusive, auto-delete, no-wait
				for i := range bits {
					bits[i], _ = r.ReadBit()
				}
				require.True(t, bits[1])
				require.True(t, bits[4])
			}
		}
	}
	require.True(t, found)
}
