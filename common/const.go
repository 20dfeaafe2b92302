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

package common

const (
	// App is the program name used as the metrics namespace.
	App = "rmqcore"

	// Version is the program version string.
	Version = "v0.0.1"

	// ReadWriteBlockSize is the default chunk size the TCP transport reads
	// into per call. AMQP frames are length-prefixed and may exceed this,
	// so the transport loops rather than assuming one read is one frame.
	ReadWriteBlockSize = 4096

	// DefaultAMQPPort is the standard AMQP broker port.
	DefaultAMQPPort = 5672
)
