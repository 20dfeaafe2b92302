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

// Package eventbus fans out the connection lifecycle and diagnostic
// events a client observes: ConnEstablished, ConnFailed, ConnClosed,
// Ready, Error and Trace. Built directly on internal/pubsub's
// channel-backed, uuid-keyed subscription queues.
package eventbus

import (
	"time"

	"github.com/packetd/rmqcore/internal/pubsub"
)

// Kind identifies an Event's category.
type Kind uint8

const (
	ConnEstablished Kind = iota
	ConnFailed
	ConnClosed
	Ready
	Error
	Trace
)

func (k Kind) String() string {
	switch k {
	case ConnEstablished:
		return "conn_established"
	case ConnFailed:
		return "conn_failed"
	case ConnClosed:
		return "conn_closed"
	case Ready:
		return "ready"
	case Error:
		return "error"
	case Trace:
		return "trace"
	default:
		return "unknown"
	}
}

// Event is one item published on the Bus.
type Event struct {
	Kind Kind
	Err  error
	Text string
}

// Bus is a narrow, typed wrapper over pubsub.PubSub for Event values.
type Bus struct {
	ps *pubsub.PubSub
}

func New() *Bus {
	return &Bus{ps: pubsub.New()}
}

// Subscribe returns a queue of Events. size is the channel buffer depth;
// a slow subscriber drops events rather than blocking the connection's
// single-threaded event loop (pubsub.Queue.Push is non-blocking).
func (b *Bus) Subscribe(size int) pubsub.Queue {
	return b.ps.Subscribe(size)
}

func (b *Bus) Unsubscribe(q pubsub.Queue) {
	b.ps.Unsubscribe(q)
}

func (b *Bus) Publish(e Event) {
	b.ps.Publish(e)
}

func (b *Bus) EmitConnEstablished() {
	b.Publish(Event{Kind: ConnEstablished})
}

func (b *Bus) EmitConnFailed(err error) {
	b.Publish(Event{Kind: ConnFailed, Err: err})
}

func (b *Bus) EmitConnClosed() {
	b.Publish(Event{Kind: ConnClosed})
}

func (b *Bus) EmitReady() {
	b.Publish(Event{Kind: Ready})
}

func (b *Bus) EmitError(err error) {
	b.Publish(Event{Kind: Error, Err: err})
}

func (b *Bus) EmitTrace(text string) {
	b.Publish(Event{Kind: Trace, Text: text})
}

// Next pops one event from q, waiting up to timeout.
func Next(q pubsub.Queue, timeout time.Duration) (Event, bool) {
	v, ok := q.PopTimeout(timeout)
	if !ok {
		return Event{}, false
	}
	return v.(Event), true
}
