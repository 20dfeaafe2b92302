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

// Package replycode names the AMQP 0-9-1 reply codes carried by
// connection.close and channel.close. Extended from
// protocol/pamqp/errorcode.go's matchErrCode table (which only needed a
// handful of codes for passive traffic annotation) to the full table
// spec.md §6 documents.
package replycode

var names = map[uint16]string{
	200: "reply-success",
	311: "content-too-large",
	313: "no-consumers",
	320: "connection-forced",
	402: "invalid-path",
	403: "access-refused",
	404: "not-found",
	405: "resource-locked",
	406: "precondition-failed",
	501: "frame-error",
	502: "syntax-error",
	503: "command-invalid",
	504: "channel-error",
	505: "unexpected-frame",
	506: "resource-error",
	530: "not-allowed",
	540: "not-implemented",
	541: "internal-error",
}

// Name returns the textual reply code name, or "unknown" if code is not
// one of the codes spec.md §6 documents.
func Name(code uint16) string {
	if n, ok := names[code]; ok {
		return n
	}
	return "unknown"
}
