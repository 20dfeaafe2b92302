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

package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/classid"
	"github.com/packetd/rmqcore/eventbus"
	"github.com/packetd/rmqcore/field"
	"github.com/packetd/rmqcore/frame"
)

// fakeWriter records every frame written and lets the test feed
// synthetic broker replies back in.
type fakeWriter struct {
	written [][]byte
	closed  bool
}

func (f *fakeWriter) Write(p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type noopHandler struct {
	methods []uint16
}

func (h *noopHandler) HandleMethod(classID, methodID uint16, args []byte) error {
	h.methods = append(h.methods, methodID)
	return nil
}
func (h *noopHandler) HandleContentHeader(bodySize uint64, flags uint16, propData []byte) error {
	return nil
}
func (h *noopHandler) HandleContentBody(payload []byte) error { return nil }

func encodeMethodFrame(channel uint16, cls, method uint16, args []byte) []byte {
	payload := frame.EncodeMethod(cls, method, args)
	buf := &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeMethod, channel, payload)
	return buf.B
}

func TestHandshakeHappyPath(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	sub := bus.Subscribe(16)
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)

	c.OnConnected()
	require.Equal(t, Connected, c.State())
	require.Equal(t, protocolHeader, w.written[0])

	// connection.start
	startArgs := &bytebufferpool.ByteBuffer{}
	aw := field.NewArgWriter(startArgs)
	aw.WriteOctet(0)
	aw.WriteOctet(9)
	_ = aw.WriteTable(nil)
	_ = aw.WriteShortString("PLAIN")
	aw.WriteLongString([]byte("en_US"))
	aw.Flush()
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionStart, startArgs.B))
	require.Equal(t, StartReceived, c.State())

	// connection.tune
	tuneArgs := &bytebufferpool.ByteBuffer{}
	tw := field.NewArgWriter(tuneArgs)
	tw.WriteShort(0)
	tw.WriteLong(131072)
	tw.WriteShort(60)
	tw.Flush()
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionTune, tuneArgs.B))
	require.Equal(t, TuneReceived, c.State())

	// connection.open-ok
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionOpenOk, nil))
	require.Equal(t, ConnectionOpen, c.State())

	// channel.open-ok
	c.OnData(encodeMethodFrame(channelID, classid.Channel, classid.ChannelOpenOk, nil))
	require.Equal(t, Ready, c.State())

	ev, ok := eventbus.Next(sub, time.Second)
	found := false
	for ok {
		if ev.Kind == eventbus.Ready {
			found = true
			break
		}
		ev, ok = eventbus.Next(sub, 10*time.Millisecond)
	}
	require.True(t, found)
}

func TestUnexpectedMethodFatal(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)

	c.OnConnected()
	// connection.tune before start is illegal.
	tuneArgs := &bytebufferpool.ByteBuffer{}
	tw := field.NewArgWriter(tuneArgs)
	tw.WriteShort(0)
	tw.WriteLong(0)
	tw.WriteShort(0)
	tw.Flush()
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionTune, tuneArgs.B))

	require.Equal(t, Disconnected, c.State())
	require.True(t, w.closed)
}

func TestChannelExceptionInitiatesClose(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)
	c.state = Ready

	args := &bytebufferpool.ByteBuffer{}
	aw := field.NewArgWriter(args)
	aw.WriteShort(404)
	_ = aw.WriteShortString("NOT_FOUND - no queue")
	aw.WriteShort(classid.Queue)
	aw.WriteShort(classid.QueueDeclare)
	aw.Flush()

	c.OnData(encodeMethodFrame(channelID, classid.Channel, classid.ChannelClose, args.B))
	require.Equal(t, Closing, c.State())
}

func TestDisconnectEntersClosing(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)
	c.state = Ready

	require.NoError(t, c.Disconnect())
	require.Equal(t, Closing, c.State())
}

func TestOnConnectedEmitsConnEstablished(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	sub := bus.Subscribe(4)
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)

	c.OnConnected()

	ev, ok := eventbus.Next(sub, time.Second)
	require.True(t, ok)
	require.Equal(t, eventbus.ConnEstablished, ev.Kind)
}

func TestIllegalMethodWhileClosingIsDropped(t *testing.T) {
	w := &fakeWriter{}
	bus := eventbus.New()
	h := &noopHandler{}
	c := New("guest", "guest", "/", w, bus, h)
	c.state = Closing

	// A stray channel.open-ok arriving while waiting for connection.close-ok
	// must be logged and dropped, not treated as fatal.
	c.OnData(encodeMethodFrame(channelID, classid.Channel, classid.ChannelOpenOk, nil))
	require.Equal(t, Closing, c.State())
	require.False(t, w.closed)

	// A stray connection.tune is likewise dropped.
	tuneArgs := &bytebufferpool.ByteBuffer{}
	tw := field.NewArgWriter(tuneArgs)
	tw.WriteShort(0)
	tw.WriteLong(0)
	tw.WriteShort(0)
	tw.Flush()
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionTune, tuneArgs.B))
	require.Equal(t, Closing, c.State())
	require.False(t, w.closed)

	// connection.close-ok is still honored while Closing.
	c.OnData(encodeMethodFrame(0, classid.Connection, classid.ConnectionCloseOk, nil))
	require.Equal(t, Disconnected, c.State())
	require.True(t, w.closed)
}
