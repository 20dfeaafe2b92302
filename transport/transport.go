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

// Package transport is the protocol core's only external collaborator: a
// bidirectional byte stream that reports connected/closed/failed/data
// events and accepts writes. Grounded on connstream/tcp.go's
// event-oriented design, generalized from read-only packet capture
// observation to a real net.Conn the core can also write to.
package transport

// Events is implemented by whatever owns the protocol core (the
// connection package's Conn, in this module). A Transport calls these
// methods as the underlying stream reports activity; none of them may
// block, since they run on the same goroutine that reads the socket.
type Events interface {
	// OnConnected fires once the transport has established its
	// underlying stream (TCP connect completed).
	OnConnected()
	// OnData fires with each chunk of bytes read from the stream. b is
	// only valid for the duration of the call; an Events implementation
	// that needs to retain any of it must copy it first.
	OnData(b []byte)
	// OnClosed fires when the peer closes the stream cleanly. A local
	// Close call does not fire it.
	OnClosed()
	// OnFailed fires when the stream fails before or instead of a clean
	// close (dial error, read error, etc).
	OnFailed(err error)
	// OnWritten fires after n bytes from a prior Write call have been
	// flushed to the stream.
	OnWritten(n int)
}

// Transport is the write/close half of the byte stream; the core holds
// one of these and calls Write whenever it has frames to send.
type Transport interface {
	// Write queues p for sending. It does not block on the network; the
	// corresponding OnWritten event reports completion.
	Write(p []byte) error
	// Close tears down the underlying stream.
	Close() error
}
