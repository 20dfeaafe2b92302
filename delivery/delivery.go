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

// Package delivery reassembles the method+header+body frame triplet that
// carries a basic.deliver or basic.return into one complete Delivery.
// Directly grounded on protocol/pamqp/channel.go's channelDecoder
// (stateDecodeHeader/stateDecodePayload, waitContentHeader,
// contentSize/contentConsumed), generalized from "sniff metadata" to
// "produce a usable message.Message".
package delivery

import (
	"github.com/pkg/errors"

	"github.com/packetd/rmqcore/message"
)

// State is the reassembler's position in the Idle -> AwaitingHeader ->
// AccumulatingBody -> Idle cycle.
type State uint8

const (
	Idle State = iota
	AwaitingHeader
	AccumulatingBody
)

// Kind distinguishes a consumer delivery from a returned-message
// notification; the two share a reassembly state machine but carry
// different identifying fields.
type Kind uint8

const (
	KindDeliver Kind = iota
	KindReturn
)

var (
	// ErrNoDelivery is returned when a content-header frame arrives while
	// Idle: no preceding basic.deliver/basic.return announced a body.
	ErrNoDelivery = errors.New("delivery: content header with no pending delivery")
	// ErrContentBeforeHeader is returned when a body frame arrives before
	// its content-header frame.
	ErrContentBeforeHeader = errors.New("delivery: body frame before content header")
	// ErrDuplicateHeader is returned when a second content-header frame
	// arrives for a delivery that already has one.
	ErrDuplicateHeader = errors.New("delivery: duplicate content header")
	// ErrBodyOverflow is returned when accumulated body bytes would
	// exceed the content header's declared body size.
	ErrBodyOverflow = errors.New("delivery: body frame exceeds declared size")
)

// Delivery is one fully reassembled basic.deliver or basic.return.
type Delivery struct {
	Kind Kind

	// Populated for KindDeliver.
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string

	// Populated for KindReturn.
	ReplyCode uint16
	ReplyText string

	Message message.Message
}

type pending struct {
	d        Delivery
	state    State
	bodySize uint64
	body     []byte
}

// Reassembler tracks in-flight delivery reassembly for a single channel.
// It is not safe for concurrent use; the client package owns exactly one
// per connection, driven from the single-threaded event loop.
type Reassembler struct {
	cur *pending
}

func New() *Reassembler {
	return &Reassembler{}
}

// Idle reports whether the reassembler has no delivery in flight.
func (r *Reassembler) Idle() bool {
	return r.cur == nil
}

// BeginDeliver starts reassembly for a basic.deliver. It is an internal
// logic error (not a protocol error) to call this while another delivery
// is already in flight; the caller (client package) is responsible for
// only ever having one method-frame announce a delivery at a time, since
// AMQP never interleaves content frames for different deliveries on one
// channel.
func (r *Reassembler) BeginDeliver(consumerTag string, deliveryTag uint64, redelivered bool, exchange, routingKey string) {
	r.cur = &pending{
		d: Delivery{
			Kind:        KindDeliver,
			ConsumerTag: consumerTag,
			DeliveryTag: deliveryTag,
			Redelivered: redelivered,
			Exchange:    exchange,
			RoutingKey:  routingKey,
		},
		state: AwaitingHeader,
	}
}

// BeginReturn starts reassembly for a basic.return.
func (r *Reassembler) BeginReturn(replyCode uint16, replyText, exchange, routingKey string) {
	r.cur = &pending{
		d: Delivery{
			Kind:       KindReturn,
			ReplyCode:  replyCode,
			ReplyText:  replyText,
			Exchange:   exchange,
			RoutingKey: routingKey,
		},
		state: AwaitingHeader,
	}
}

// OnHeader feeds a decoded content-header frame. complete is true when
// bodySize is zero, since a zero-length body delivery has nothing left to
// accumulate.
func (r *Reassembler) OnHeader(bodySize uint64, props message.Properties) (complete bool, err error) {
	if r.cur == nil {
		return false, ErrNoDelivery
	}
	if r.cur.state != AwaitingHeader {
		return false, ErrDuplicateHeader
	}
	r.cur.d.Message.Properties = props
	r.cur.bodySize = bodySize
	r.cur.state = AccumulatingBody
	if bodySize == 0 {
		r.cur.d.Message = message.NewOwned(props, nil)
		return true, nil
	}
	r.cur.body = make([]byte, 0, bodySize)
	return false, nil
}

// OnBody feeds one body frame's payload, which may legally be zero bytes
// long. complete is true once the accumulated body reaches the declared
// body size.
func (r *Reassembler) OnBody(payload []byte) (complete bool, err error) {
	if r.cur == nil || r.cur.state == AwaitingHeader {
		return false, ErrContentBeforeHeader
	}
	if uint64(len(r.cur.body)+len(payload)) > r.cur.bodySize {
		return false, ErrBodyOverflow
	}
	r.cur.body = append(r.cur.body, payload...)
	if uint64(len(r.cur.body)) == r.cur.bodySize {
		r.cur.d.Message = message.NewOwned(r.cur.d.Message.Properties, r.cur.body)
		return true, nil
	}
	return false, nil
}

// Take returns the completed delivery and resets the reassembler to
// Idle. Callers must only call Take after OnHeader or OnBody reported
// complete.
func (r *Reassembler) Take() Delivery {
	d := r.cur.d
	r.cur = nil
	return d
}
