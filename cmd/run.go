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

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/rmqcore/client"
	"github.com/packetd/rmqcore/connection"
	"github.com/packetd/rmqcore/eventbus"
	"github.com/packetd/rmqcore/internal/pubsub"
	"github.com/packetd/rmqcore/logger"
	"github.com/packetd/rmqcore/server"
	"github.com/packetd/rmqcore/transport"
)

// connectTimeout bounds how long a CLI invocation waits for the broker
// handshake to reach Ready before giving up.
const connectTimeout = 10 * time.Second

// withClient dials the broker named by the persistent --host/--port/...
// flags, waits for the connection to become Ready, runs fn, then closes
// the connection gracefully. Every subcommand's RunE ends by calling
// this.
func withClient(fn func(c *client.Client) error) error {
	if flagMetricsAddr != "" {
		srv := server.NewWithAddress(flagMetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				logger.Warnf("metrics server stopped: %v", err)
			}
		}()
	}

	c, err := client.New(flagUser, flagPassword, flagVHost)
	if err != nil {
		return err
	}

	sub := c.Events().Subscribe(32)
	defer c.Events().Unsubscribe(sub)

	addr := fmt.Sprintf("%s:%d", flagHost, flagPort)
	tp := transport.NewTCP(addr, c)
	c.Attach(tp)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	tp.Connect(ctx)

	if err := waitFor(sub, eventbus.Ready, connectTimeout); err != nil {
		return errors.Wrap(err, "waiting for connection to become ready")
	}

	runErr := fn(c)

	if c.State() != connection.Disconnected {
		_ = c.Disconnect()
		_ = waitFor(sub, eventbus.ConnClosed, connectTimeout)
	}

	return runErr
}

// waitFor blocks until an event of kind arrives on sub or timeout
// elapses, surfacing ConnFailed/ConnClosed/Error events encountered along
// the way as errors rather than silently dropping them.
func waitFor(sub pubsub.Queue, kind eventbus.Kind, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errors.Errorf("timed out waiting for %s", kind)
		}
		ev, ok := eventbus.Next(sub, remaining)
		if !ok {
			continue
		}
		if ev.Kind == kind {
			return nil
		}
		switch ev.Kind {
		case eventbus.ConnFailed:
			return ev.Err
		case eventbus.ConnClosed:
			return errors.Errorf("connection closed while waiting for %s", kind)
		case eventbus.Error:
			logger.Warnf("rmqctl: %v", ev.Err)
			return ev.Err
		case eventbus.Trace:
			logger.Debugf("rmqctl: %s", ev.Text)
		}
	}
}
