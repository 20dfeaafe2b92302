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

import "github.com/packetd/rmqcore/delivery"

// Action tells the client what to do with a delivery after a
// MessageCallback returns.
type Action uint8

const (
	// ActionNone leaves the delivery untouched; the caller will ack or
	// reject it later through Client.Ack/Reject directly.
	ActionNone Action = iota
	ActionAck
	ActionReject
	ActionRequeue
)

// MessageCallback handles one reassembled delivery and reports what
// should happen to it.
type MessageCallback func(d delivery.Delivery) Action

type consumerEntry struct {
	tag   string
	queue string
	cb    MessageCallback
}

// registry is the consumer registry, indexed both by consumer tag (to
// dispatch an incoming basic.deliver) and by queue (to support
// unsubscribing by queue name). Grounded on internal/pubsub's
// dual-bookkeeping style of keeping a subscription reachable by more than
// one key.
type registry struct {
	byTag   map[string]*consumerEntry
	byQueue map[string]*consumerEntry
}

func newRegistry() *registry {
	return &registry{
		byTag:   make(map[string]*consumerEntry),
		byQueue: make(map[string]*consumerEntry),
	}
}

func (r *registry) add(tag, queue string, cb MessageCallback) {
	e := &consumerEntry{tag: tag, queue: queue, cb: cb}
	r.byTag[tag] = e
	r.byQueue[queue] = e
}

func (r *registry) removeByTag(tag string) {
	e, ok := r.byTag[tag]
	if !ok {
		return
	}
	delete(r.byTag, tag)
	delete(r.byQueue, e.queue)
}

func (r *registry) removeByQueue(queue string) (*consumerEntry, bool) {
	e, ok := r.byQueue[queue]
	if !ok {
		return nil, false
	}
	delete(r.byQueue, queue)
	delete(r.byTag, e.tag)
	return e, true
}

func (r *registry) getByTag(tag string) (*consumerEntry, bool) {
	e, ok := r.byTag[tag]
	return e, ok
}

func (r *registry) getByQueue(queue string) (*consumerEntry, bool) {
	e, ok := r.byQueue[queue]
	return e, ok
}
