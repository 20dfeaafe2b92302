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

// Package client is the public facade composing wire/field/frame/message,
// delivery, connection and eventbus into the operations spec.md §4.G
// names: publish, subscribe, unsubscribe, ack, reject, requeue, and the
// topology operations (declare/delete queue, declare/delete exchange,
// bind/unbind queue). Grounded on classmethod.go's classMethods table
// (reused via the classid package) as the class/method id source of
// truth, and on internal/pubsub's dual-index bookkeeping style for the
// consumer registry.
package client

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/classid"
	"github.com/packetd/rmqcore/connection"
	"github.com/packetd/rmqcore/delivery"
	"github.com/packetd/rmqcore/eventbus"
	"github.com/packetd/rmqcore/field"
	"github.com/packetd/rmqcore/logger"
	"github.com/packetd/rmqcore/message"
)

// ErrMissingCredentials is returned by New when login or password is
// empty; spec.md requires both to be set to attempt a connection.
var ErrMissingCredentials = errors.New("client: login and password are both required")

func newError(format string, args ...any) error {
	return errors.Errorf("client: "+format, args...)
}

// ReturnCallback handles a basic.return: a published message the broker
// could not route and is handing back.
type ReturnCallback func(d delivery.Delivery)

// Client is the AMQP client facade. It implements transport.Events and
// connection.Handler structurally, so it can be wired straight into a
// transport.Transport without either package importing the other.
type Client struct {
	conn        *connection.Conn
	bus         *eventbus.Bus
	reassembler *delivery.Reassembler
	reg         *registry

	tagCounter uint64
	onReturn   ReturnCallback
}

// New constructs a Client bound to the given broker login/vhost. The
// caller must call Attach with a transport before connecting.
func New(login, password, vhost string) (*Client, error) {
	if login == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	c := &Client{
		bus:         eventbus.New(),
		reassembler: delivery.New(),
		reg:         newRegistry(),
	}
	c.conn = connection.New(login, password, vhost, nil, c.bus, c)
	return c, nil
}

// Events returns the bus callers subscribe to for ConnEstablished,
// ConnFailed, ConnClosed, Ready, Error and Trace notifications.
func (c *Client) Events() *eventbus.Bus {
	return c.bus
}

// Attach wires the underlying transport. Call this once, before the
// transport dials.
func (c *Client) Attach(w connection.Writer) {
	c.conn.SetWriter(w)
}

func (c *Client) State() connection.State {
	return c.conn.State()
}

// OnReturn registers the callback invoked for every basic.return the
// broker sends back (e.g. a mandatory publish with no matching queue).
func (c *Client) OnReturn(cb ReturnCallback) {
	c.onReturn = cb
}

// Disconnect begins a graceful shutdown: connection.close, wait for
// connection.close-ok (or CloseTimeout), then the transport is closed.
func (c *Client) Disconnect() error {
	return c.conn.Disconnect()
}

// ---- transport.Events passthrough ----

func (c *Client) OnConnected()       { c.conn.OnConnected() }
func (c *Client) OnData(b []byte)    { c.conn.OnData(b) }
func (c *Client) OnClosed()          { c.conn.OnClosed() }
func (c *Client) OnFailed(err error) { c.conn.OnFailed(err) }
func (c *Client) OnWritten(n int)    { c.conn.OnWritten(n) }

// ---- connection.Handler ----

func (c *Client) HandleMethod(classID, methodID uint16, args []byte) error {
	if classID != classid.Basic {
		c.bus.EmitTrace(fmt.Sprintf("ignoring method class=%d method=%d", classID, methodID))
		return nil
	}

	r := field.NewArgReader(args)
	switch methodID {
	case classid.BasicDeliver:
		consumerTag, err := r.ReadShortString()
		if err != nil {
			return err
		}
		deliveryTag, err := r.ReadLongLong()
		if err != nil {
			return err
		}
		redelivered, err := r.ReadBit()
		if err != nil {
			return err
		}
		exchange, err := r.ReadShortString()
		if err != nil {
			return err
		}
		routingKey, err := r.ReadShortString()
		if err != nil {
			return err
		}
		c.reassembler.BeginDeliver(consumerTag, deliveryTag, redelivered, exchange, routingKey)
		return nil

	case classid.BasicReturn:
		replyCode, err := r.ReadShort()
		if err != nil {
			return err
		}
		replyText, err := r.ReadShortString()
		if err != nil {
			return err
		}
		exchange, err := r.ReadShortString()
		if err != nil {
			return err
		}
		routingKey, err := r.ReadShortString()
		if err != nil {
			return err
		}
		c.reassembler.BeginReturn(replyCode, replyText, exchange, routingKey)
		return nil

	default:
		c.bus.EmitTrace(fmt.Sprintf("ignoring basic method %d", methodID))
		return nil
	}
}

func (c *Client) HandleContentHeader(bodySize uint64, flags uint16, propData []byte) error {
	props, err := message.DecodeProperties(flags, propData)
	if err != nil {
		return err
	}
	complete, err := c.reassembler.OnHeader(bodySize, props)
	if err != nil {
		return err
	}
	if complete {
		c.finishDelivery()
	}
	return nil
}

func (c *Client) HandleContentBody(payload []byte) error {
	complete, err := c.reassembler.OnBody(payload)
	if err != nil {
		return err
	}
	if complete {
		c.finishDelivery()
	}
	return nil
}

func (c *Client) finishDelivery() {
	d := c.reassembler.Take()

	switch d.Kind {
	case delivery.KindReturn:
		if c.onReturn != nil {
			c.onReturn(d)
		}
		return
	case delivery.KindDeliver:
		e, ok := c.reg.getByTag(d.ConsumerTag)
		if !ok {
			// No registered consumer (e.g. raced with Unsubscribe):
			// requeue so the message is not lost.
			if err := c.Reject(d.DeliveryTag, true); err != nil {
				logger.Errorf("client: requeue orphaned delivery: %v", err)
			}
			return
		}

		action := e.cb(d)
		var err error
		switch action {
		case ActionAck:
			err = c.Ack(d.DeliveryTag, false)
		case ActionReject:
			err = c.Reject(d.DeliveryTag, false)
		case ActionRequeue:
			err = c.Reject(d.DeliveryTag, true)
		case ActionNone:
			// caller acks/rejects explicitly later.
		}
		if err != nil {
			logger.Errorf("client: post-delivery ack/reject: %v", err)
		}
	}
}

// Publish sends a message to exchange with routingKey. mandatory asks the
// broker to return the message via OnReturn if it cannot be routed to any
// queue; immediate is accepted for API completeness but most modern
// brokers no longer implement it.
func (c *Client) Publish(exchange, routingKey string, mandatory, immediate bool, props message.Properties, body []byte) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(exchange); err != nil {
		return err
	}
	if err := w.WriteShortString(routingKey); err != nil {
		return err
	}
	w.WriteBit(mandatory)
	w.WriteBit(immediate)
	w.Flush()

	if err := c.conn.SendMethod(classid.Basic, classid.BasicPublish, buf.B); err != nil {
		return err
	}

	propBuf := &bytebufferpool.ByteBuffer{}
	flags, err := message.EncodeProperties(propBuf, props)
	if err != nil {
		return err
	}
	return c.conn.SendContent(classid.Basic, uint64(len(body)), flags, propBuf.B, body)
}

// Subscribe registers a consumer on queue and issues basic.consume with
// no-wait set, per spec.md §4.G (topology and consumption operations in
// this client never wait for a server confirmation). It returns the
// locally generated consumer tag.
func (c *Client) Subscribe(queue string, noAck bool, cb MessageCallback) (string, error) {
	tag := fmt.Sprintf("consumer-%d", atomic.AddUint64(&c.tagCounter, 1))

	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(queue); err != nil {
		return "", err
	}
	if err := w.WriteShortString(tag); err != nil {
		return "", err
	}
	w.WriteBit(false) // no-local
	w.WriteBit(noAck)
	w.WriteBit(false) // exclusive
	w.WriteBit(true)  // no-wait
	if err := w.WriteTable(nil); err != nil {
		return "", err
	}
	w.Flush()

	if err := c.conn.SendMethod(classid.Basic, classid.BasicConsume, buf.B); err != nil {
		return "", err
	}

	c.reg.add(tag, queue, cb)
	return tag, nil
}

// Unsubscribe cancels the consumer registered against queue. The tag used
// on the wire is resolved from the registry's queue index; dispatch of
// basic.deliver is keyed by tag, but a caller unsubscribes by the queue it
// originally subscribed to.
func (c *Client) Unsubscribe(queue string) error {
	e, ok := c.reg.getByQueue(queue)
	if !ok {
		return newError("no consumer registered for queue %q", queue)
	}

	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	if err := w.WriteShortString(e.tag); err != nil {
		return err
	}
	w.WriteBit(true) // no-wait
	w.Flush()

	if err := c.conn.SendMethod(classid.Basic, classid.BasicCancel, buf.B); err != nil {
		return err
	}
	c.reg.removeByQueue(queue)
	return nil
}

// Ack acknowledges one or more deliveries (multiple=true acks every
// unacked delivery up to and including deliveryTag).
func (c *Client) Ack(deliveryTag uint64, multiple bool) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteLongLong(deliveryTag)
	w.WriteBit(multiple)
	w.Flush()
	return c.conn.SendMethod(classid.Basic, classid.BasicAck, buf.B)
}

// Reject rejects a single delivery, discarding it (requeue=false) or
// returning it to the queue for redelivery (requeue=true).
func (c *Client) Reject(deliveryTag uint64, requeue bool) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteLongLong(deliveryTag)
	w.WriteBit(requeue)
	w.Flush()
	return c.conn.SendMethod(classid.Basic, classid.BasicReject, buf.B)
}

// QueueOptions controls queue.declare/queue.delete flags. Passive asks the
// broker to merely check the queue exists (and fail otherwise) instead of
// creating it.
type QueueOptions struct {
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	IfUnused   bool
	IfEmpty    bool
	Args       field.Table
}

// DeclareQueue declares queue with no-wait set.
func (c *Client) DeclareQueue(name string, opts QueueOptions) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(name); err != nil {
		return err
	}
	w.WriteBit(opts.Passive)
	w.WriteBit(opts.Durable)
	w.WriteBit(opts.Exclusive)
	w.WriteBit(opts.AutoDelete)
	w.WriteBit(true) // no-wait
	if err := w.WriteTable(opts.Args); err != nil {
		return err
	}
	w.Flush()
	return c.conn.SendMethod(classid.Queue, classid.QueueDeclare, buf.B)
}

// DeleteQueue deletes queue with no-wait set.
func (c *Client) DeleteQueue(name string, opts QueueOptions) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(name); err != nil {
		return err
	}
	w.WriteBit(opts.IfUnused)
	w.WriteBit(opts.IfEmpty)
	w.WriteBit(true) // no-wait
	w.Flush()
	return c.conn.SendMethod(classid.Queue, classid.QueueDelete, buf.B)
}

// BindQueue binds queue to exchange with routingKey.
func (c *Client) BindQueue(queue, exchange, routingKey string, args field.Table) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(queue); err != nil {
		return err
	}
	if err := w.WriteShortString(exchange); err != nil {
		return err
	}
	if err := w.WriteShortString(routingKey); err != nil {
		return err
	}
	w.WriteBit(true) // no-wait
	if err := w.WriteTable(args); err != nil {
		return err
	}
	w.Flush()
	return c.conn.SendMethod(classid.Queue, classid.QueueBind, buf.B)
}

// UnbindQueue removes a queue/exchange binding.
func (c *Client) UnbindQueue(queue, exchange, routingKey string, args field.Table) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(queue); err != nil {
		return err
	}
	if err := w.WriteShortString(exchange); err != nil {
		return err
	}
	if err := w.WriteShortString(routingKey); err != nil {
		return err
	}
	if err := w.WriteTable(args); err != nil {
		return err
	}
	w.Flush()
	return c.conn.SendMethod(classid.Queue, classid.QueueUnbind, buf.B)
}

// ExchangeOptions controls exchange.declare flags. Type is a standard
// AMQP exchange type name ("direct", "fanout", "topic", "headers").
// Passive asks the broker to merely check the exchange exists (and fail
// otherwise) instead of creating it.
type ExchangeOptions struct {
	Type       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	Args       field.Table
}

// DeclareExchange declares exchange with no-wait set.
func (c *Client) DeclareExchange(name string, opts ExchangeOptions) error {
	if opts.Type == "" {
		return newError("exchange type is required")
	}

	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(name); err != nil {
		return err
	}
	if err := w.WriteShortString(opts.Type); err != nil {
		return err
	}
	w.WriteBit(opts.Passive)
	w.WriteBit(opts.Durable)
	w.WriteBit(opts.AutoDelete)
	w.WriteBit(opts.Internal)
	w.WriteBit(true) // no-wait
	if err := w.WriteTable(opts.Args); err != nil {
		return err
	}
	w.Flush()
	return c.conn.SendMethod(classid.Exchange, classid.ExchangeDeclare, buf.B)
}

// DeleteExchange deletes exchange with no-wait set.
func (c *Client) DeleteExchange(name string, ifUnused bool) error {
	buf := &bytebufferpool.ByteBuffer{}
	w := field.NewArgWriter(buf)
	w.WriteShort(0) // reserved ticket
	if err := w.WriteShortString(name); err != nil {
		return err
	}
	w.WriteBit(ifUnused)
	w.WriteBit(true) // no-wait
	w.Flush()
	return c.conn.SendMethod(classid.Exchange, classid.ExchangeDelete, buf.B)
}
