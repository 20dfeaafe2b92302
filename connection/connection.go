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

// Package connection drives the AMQP 0-9-1 connection and channel
// handshake state machine: Disconnected -> Connected -> StartReceived ->
// TuneReceived -> ConnectionOpen -> Ready -> Closing -> Disconnected.
// Grounded on protocol/conn.go's Conn interface and protocol/pool.go's
// L7TCPConn lifecycle (IsClosed/ActiveAt/Free), generalized from
// observe-only bookkeeping to driving the handshake; reply codes are
// sourced from protocol/pamqp/errorcode.go's errCodes table via the
// replycode package.
package connection

import (
	"time"

	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/classid"
	"github.com/packetd/rmqcore/eventbus"
	"github.com/packetd/rmqcore/field"
	"github.com/packetd/rmqcore/frame"
	"github.com/packetd/rmqcore/logger"
	"github.com/packetd/rmqcore/replycode"
)

// State is the connection's position in the handshake/open/close cycle.
type State uint8

const (
	Disconnected State = iota
	Connected
	StartReceived
	TuneReceived
	ConnectionOpen
	Ready
	Closing
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case StartReceived:
		return "start_received"
	case TuneReceived:
		return "tune_received"
	case ConnectionOpen:
		return "connection_open"
	case Ready:
		return "ready"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// protocolHeader is the AMQP 0-9-1 protocol header sent as the very first
// bytes of a new connection.
var protocolHeader = []byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// channelID is the single channel this client opens. Multiplexing
// multiple channels per connection is out of scope; see spec.md's
// Non-goals.
const channelID uint16 = 1

// CloseTimeout bounds how long Disconnect waits for the broker's
// connection.close-ok before forcing the transport closed. spec.md §5
// flags the absence of such a timeout as an open gap; this is the value
// this implementation settles on.
const CloseTimeout = 10 * time.Second

var (
	// ErrInvalidState is returned when an operation is attempted in a
	// state that does not allow it (e.g. sending a method before Ready).
	ErrInvalidState = errors.New("connection: invalid state for this operation")
	// ErrUnexpectedMethod is the fatal error raised when a handshake
	// method arrives in a state that doesn't expect it.
	ErrUnexpectedMethod = errors.New("connection: unexpected method for current state")
	// ErrCloseTimeout is emitted (not returned; there is no caller to
	// return it to) when the broker never answers connection.close.
	ErrCloseTimeout = errors.New("connection: timed out waiting for connection.close-ok")
)

func newError(format string, args ...any) error {
	return errors.Errorf("connection: "+format, args...)
}

// Writer is the minimal transport capability Conn needs: queue bytes for
// sending, and tear the stream down. transport.Transport satisfies this
// structurally.
type Writer interface {
	Write(p []byte) error
	Close() error
}

// Handler receives every method/content frame the handshake state machine
// itself does not consume (basic.*, queue.*-ok, exchange.*-ok, tx.*).
// The client package implements this to dispatch deliveries and returns.
type Handler interface {
	HandleMethod(classID, methodID uint16, args []byte) error
	HandleContentHeader(bodySize uint64, flags uint16, propData []byte) error
	HandleContentBody(payload []byte) error
}

// Conn is the connection state machine. It implements transport.Events
// structurally (OnConnected/OnData/OnClosed/OnFailed/OnWritten) without
// importing the transport package, so callers wire it in with a plain
// interface value.
type Conn struct {
	login, password, vhost string

	w       Writer
	bus     *eventbus.Bus
	handler Handler

	state State
	rbuf  []byte

	closeTimer *time.Timer
}

// New constructs a Conn. w may be nil and supplied later via SetWriter,
// to break the construction cycle between a Conn and the transport that
// will deliver events to it.
func New(login, password, vhost string, w Writer, bus *eventbus.Bus, h Handler) *Conn {
	return &Conn{
		login:    login,
		password: password,
		vhost:    vhost,
		w:        w,
		bus:      bus,
		handler:  h,
		state:    Disconnected,
	}
}

// SetWriter attaches (or replaces) the transport Conn writes frames to.
func (c *Conn) SetWriter(w Writer) {
	c.w = w
}

func (c *Conn) State() State {
	return c.state
}

// ---- transport.Events ----

func (c *Conn) OnConnected() {
	c.state = Connected
	c.rbuf = nil
	c.bus.EmitConnEstablished()
	if err := c.w.Write(protocolHeader); err != nil {
		c.fail(err)
		return
	}
	c.bus.EmitTrace("sent protocol header")
}

func (c *Conn) OnData(b []byte) {
	c.rbuf = append(c.rbuf, b...)
	for {
		fr, n, err := frame.Read(c.rbuf)
		if stderrors.Is(err, frame.ErrNeedMore) {
			return
		}
		if err != nil {
			c.fail(newError("frame read: %v", err))
			return
		}
		c.rbuf = c.rbuf[n:]
		if err := c.dispatch(fr); err != nil {
			c.fail(err)
			return
		}
		if c.state == Disconnected {
			return
		}
	}
}

func (c *Conn) OnClosed() {
	c.teardown()
	c.bus.EmitConnClosed()
}

func (c *Conn) OnFailed(err error) {
	c.teardown()
	c.bus.EmitConnFailed(err)
}

func (c *Conn) OnWritten(n int) {
	c.bus.EmitTrace("wrote frame bytes")
}

func (c *Conn) teardown() {
	c.state = Disconnected
	c.rbuf = nil
	if c.closeTimer != nil {
		c.closeTimer.Stop()
		c.closeTimer = nil
	}
}

func (c *Conn) fail(err error) {
	logger.Errorf("connection: fatal error: %v", err)
	c.bus.EmitError(err)
	_ = c.w.Close()
	c.teardown()
}

// ---- dispatch ----

func (c *Conn) dispatch(fr *frame.Frame) error {
	switch fr.Type {
	case frame.TypeMethod:
		classID, methodID, args, err := frame.DecodeMethod(fr.Payload)
		if err != nil {
			return newError("decode method: %v", err)
		}
		return c.handleMethod(fr.Channel, classID, methodID, args)
	case frame.TypeHeader:
		if c.state != Ready {
			return newError("content header frame in state %s", c.state)
		}
		hp, err := frame.DecodeHeader(fr.Payload)
		if err != nil {
			return newError("decode content header: %v", err)
		}
		return c.handler.HandleContentHeader(hp.BodySize, hp.Flags, hp.PropData)
	case frame.TypeBody:
		if c.state != Ready {
			return newError("content body frame in state %s", c.state)
		}
		return c.handler.HandleContentBody(fr.Payload)
	case frame.TypeHeartbeat:
		return nil
	default:
		return newError("unknown frame type %d", fr.Type)
	}
}

func (c *Conn) handleMethod(channel uint16, classID, methodID uint16, args []byte) error {
	switch classID {
	case classid.Connection:
		return c.handleConnectionMethod(methodID, args)
	case classid.Channel:
		return c.handleChannelMethod(methodID, args)
	default:
		if c.state != Ready {
			c.bus.EmitTrace("ignoring method before ready")
			return nil
		}
		return c.handler.HandleMethod(classID, methodID, args)
	}
}

func (c *Conn) handleConnectionMethod(methodID uint16, args []byte) error {
	if c.state == Closing && methodID != classid.ConnectionClose && methodID != classid.ConnectionCloseOk {
		c.bus.EmitTrace("ignoring connection method while closing")
		return nil
	}

	switch methodID {
	case classid.ConnectionStart:
		if c.state != Connected {
			return ErrUnexpectedMethod
		}
		return c.sendStartOk()
	case classid.ConnectionTune:
		if c.state != StartReceived {
			return ErrUnexpectedMethod
		}
		return c.handleTune(args)
	case classid.ConnectionOpenOk:
		if c.state != TuneReceived {
			return ErrUnexpectedMethod
		}
		c.state = ConnectionOpen
		return c.sendChannelOpen()
	case classid.ConnectionClose:
		return c.handlePeerClose(args)
	case classid.ConnectionCloseOk:
		if c.state != Closing {
			return ErrUnexpectedMethod
		}
		if c.closeTimer != nil {
			c.closeTimer.Stop()
			c.closeTimer = nil
		}
		_ = c.w.Close()
		c.state = Disconnected
		c.bus.EmitConnClosed()
		return nil
	default:
		c.bus.EmitTrace("ignoring unhandled connection method")
		return nil
	}
}

func (c *Conn) handleChannelMethod(methodID uint16, args []byte) error {
	if c.state == Closing && methodID != classid.ChannelClose {
		c.bus.EmitTrace("ignoring channel method while closing")
		return nil
	}

	switch methodID {
	case classid.ChannelOpenOk:
		if c.state != ConnectionOpen {
			return ErrUnexpectedMethod
		}
		c.state = Ready
		c.bus.EmitReady()
		return nil
	case classid.ChannelClose:
		return c.handleChannelException(args)
	default:
		c.bus.EmitTrace("ignoring unhandled channel method")
		return nil
	}
}

func (c *Conn) handleChannelException(args []byte) error {
	r := field.NewArgReader(args)
	replyCode, err := r.ReadShort()
	if err != nil {
		return err
	}
	replyText, err := r.ReadShortString()
	if err != nil {
		return err
	}
	failedClassID, err := r.ReadShort()
	if err != nil {
		return err
	}
	failedMethodID, err := r.ReadShort()
	if err != nil {
		return err
	}

	c.bus.EmitError(newError("channel exception: %s (%d) on class %d method %d: %s",
		replycode.Name(replyCode), replyCode, failedClassID, failedMethodID, replyText))

	if err := c.sendMethod(channelID, classid.Channel, classid.ChannelCloseOk, nil); err != nil {
		return err
	}
	return c.initiateClose(200, "channel exception")
}

func (c *Conn) handlePeerClose(args []byte) error {
	r := field.NewArgReader(args)
	replyCode, _ := r.ReadShort()
	replyText, _ := r.ReadShortString()

	if replyCode != 200 {
		c.bus.EmitError(newError("connection closed by peer: %s (%d): %s",
			replycode.Name(replyCode), replyCode, replyText))
	}

	if err := c.sendMethod(0, classid.Connection, classid.ConnectionCloseOk, nil); err != nil {
		return err
	}
	_ = c.w.Close()
	c.state = Disconnected
	c.bus.EmitConnClosed()
	return nil
}

func (c *Conn) handleTune(args []byte) error {
	r := field.NewArgReader(args)
	channelMax, err := r.ReadShort()
	if err != nil {
		return err
	}
	frameMax, err := r.ReadLong()
	if err != nil {
		return err
	}
	heartbeat, err := r.ReadShort()
	if err != nil {
		return err
	}

	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(channelMax)
	w.WriteLong(frameMax)
	w.WriteShort(heartbeat)
	w.Flush()
	if err := c.sendMethod(0, classid.Connection, classid.ConnectionTuneOk, buf.B); err != nil {
		return err
	}

	c.state = TuneReceived
	return c.sendConnectionOpen()
}

func (c *Conn) sendStartOk() error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	if err := w.WriteTable(nil); err != nil {
		return err
	}
	if err := w.WriteShortString("PLAIN"); err != nil {
		return err
	}
	response := "\x00" + c.login + "\x00" + c.password
	w.WriteLongString([]byte(response))
	if err := w.WriteShortString("en_US"); err != nil {
		return err
	}
	w.Flush()

	if err := c.sendMethod(0, classid.Connection, classid.ConnectionStartOk, buf.B); err != nil {
		return err
	}
	c.state = StartReceived
	return nil
}

func (c *Conn) sendConnectionOpen() error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	if err := w.WriteShortString(c.vhost); err != nil {
		return err
	}
	if err := w.WriteShortString(""); err != nil { // reserved
		return err
	}
	w.WriteBit(false) // reserved
	w.Flush()
	return c.sendMethod(0, classid.Connection, classid.ConnectionOpen, buf.B)
}

func (c *Conn) sendChannelOpen() error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	if err := w.WriteShortString(""); err != nil { // reserved
		return err
	}
	w.Flush()
	return c.sendMethod(channelID, classid.Channel, classid.ChannelOpen, buf.B)
}

// SendMethod lets the client package compose and send arbitrary method
// frames (basic.publish, exchange.declare, ...) once the connection is
// Ready.
func (c *Conn) SendMethod(cls, method uint16, args []byte) error {
	if c.state != Ready {
		return ErrInvalidState
	}
	return c.sendMethod(channelID, cls, method, args)
}

// SendContent writes a content-header frame followed by a single body
// frame carrying the whole body. The body is not split by the frame_max
// value negotiated in connection.tune.
func (c *Conn) SendContent(cls uint16, bodySize uint64, flags uint16, propData, body []byte) error {
	if c.state != Ready {
		return ErrInvalidState
	}
	headerPayload := frame.EncodeHeader(cls, bodySize, flags, propData)
	buf := &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeHeader, channelID, headerPayload)
	frame.Write(buf, frame.TypeBody, channelID, body)
	return c.w.Write(buf.B)
}

func (c *Conn) sendMethod(channel, cls, method uint16, args []byte) error {
	payload := frame.EncodeMethod(cls, method, args)
	buf := &bytebufferpool.ByteBuffer{}
	frame.Write(buf, frame.TypeMethod, channel, payload)
	return c.w.Write(buf.B)
}

// Disconnect initiates a graceful connection.close handshake. If the
// broker never answers with connection.close-ok within CloseTimeout, the
// transport is force-closed so the caller is never wedged waiting for an
// unresponsive broker.
func (c *Conn) Disconnect() error {
	return c.initiateClose(200, "goodbye")
}

func (c *Conn) initiateClose(code uint16, reason string) error {
	if c.state == Disconnected || c.state == Closing {
		return nil
	}

	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(code)
	if err := w.WriteShortString(reason); err != nil {
		return err
	}
	w.WriteShort(0) // failing class id, none
	w.WriteShort(0) // failing method id, none
	w.Flush()

	if err := c.sendMethod(0, classid.Connection, classid.ConnectionClose, buf.B); err != nil {
		return err
	}
	c.state = Closing
	c.closeTimer = time.AfterFunc(CloseTimeout, func() {
		logger.Warnf("connection: %v", ErrCloseTimeout)
		c.bus.EmitError(ErrCloseTimeout)
		_ = c.w.Close()
		c.bus.EmitConnClosed()
	})
	return nil
}
