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

package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/packetd/rmqcore/common"
	"github.com/packetd/rmqcore/internal/rescue"
)

// TCP is the default Transport: a plain net.Conn driven by one reader
// goroutine and one writer goroutine, reporting activity through an
// Events implementation.
type TCP struct {
	addr   string
	events Events

	mu       sync.Mutex
	conn     net.Conn
	closeOnce sync.Once

	writeCh chan []byte
	doneCh  chan struct{}
}

// NewTCP creates a TCP transport for addr ("host:port"). Connect must be
// called to actually dial.
func NewTCP(addr string, events Events) *TCP {
	return &TCP{
		addr:    addr,
		events:  events,
		writeCh: make(chan []byte, 64),
		doneCh:  make(chan struct{}),
	}
}

// Connect dials addr and starts the reader/writer goroutines. It reports
// failure through OnFailed rather than returning an error directly, so
// callers that fire-and-forget Connect still observe dial failures the
// same way they observe later read/write failures.
func (t *TCP) Connect(ctx context.Context) {
	go t.run(ctx)
}

func (t *TCP) run(ctx context.Context) {
	defer rescue.HandleCrash()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		t.events.OnFailed(err)
		return
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.events.OnConnected()

	go t.writeLoop()
	t.readLoop()
}

func (t *TCP) readLoop() {
	defer rescue.HandleCrash()

	buf := make([]byte, common.ReadWriteBlockSize)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			t.events.OnData(buf[:n])
		}
		if err != nil {
			t.finish(err)
			return
		}
	}
}

func (t *TCP) writeLoop() {
	defer rescue.HandleCrash()

	for {
		select {
		case p, ok := <-t.writeCh:
			if !ok {
				return
			}
			n, err := t.conn.Write(p)
			if err != nil {
				t.finish(err)
				return
			}
			t.events.OnWritten(n)
		case <-t.doneCh:
			return
		}
	}
}

func (t *TCP) finish(err error) {
	reported := false
	t.closeOnce.Do(func() {
		close(t.doneCh)
		reported = true
	})
	if !reported {
		return
	}
	if err != nil && !errors.Is(err, io.EOF) {
		t.events.OnFailed(err)
	} else {
		t.events.OnClosed()
	}
}

func (t *TCP) Write(p []byte) error {
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case t.writeCh <- cp:
		return nil
	case <-t.doneCh:
		return net.ErrClosed
	}
}

func (t *TCP) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	t.closeOnce.Do(func() {
		close(t.doneCh)
	})
	if conn != nil {
		return conn.Close()
	}
	return nil
}
