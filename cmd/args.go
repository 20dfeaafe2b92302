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
	"strings"

	"github.com/pkg/errors"

	"github.com/packetd/rmqcore/common"
	"github.com/packetd/rmqcore/field"
)

// parseArgTable turns repeated "--arg key=value" flag values into a field
// table suitable for the declare/bind operations' optional arguments.
// Values are always read back as strings (common.Options.GetString, which
// goes through spf13/cast) since a command-line flag has no richer type
// to offer.
func parseArgTable(pairs []string) (field.Table, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	opts := common.NewOptions()
	var keys []string
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Errorf("invalid --arg %q, expected key=value", pair)
		}
		opts.Merge(k, v)
		keys = append(keys, k)
	}

	var t field.Table
	for _, k := range keys {
		v, err := opts.GetString(k)
		if err != nil {
			return nil, errors.Wrapf(err, "arg %q", k)
		}
		t.Set(k, field.NewShortString(v))
	}
	return t, nil
}
