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
	"github.com/packetd/rmqcore/confengine"
)

// brokerDefaults is the shape of an optional --config YAML file supplying
// connection defaults, so a user driving many rmqctl invocations against
// the same broker does not have to repeat --host/--user/--password every
// time. Flags explicitly passed on the command line still win;
// applyConfigDefaults only fills in flags not set on the command line.
type brokerDefaults struct {
	Host     string `config:"host"`
	Port     int    `config:"port"`
	User     string `config:"user"`
	Password string `config:"password"`
	VHost    string `config:"vhost"`
}

var flagConfigPath string

// applyConfigDefaults loads flagConfigPath, if set, and fills in any
// connection flag still at its cobra default.
func applyConfigDefaults() error {
	if flagConfigPath == "" {
		return nil
	}

	conf, err := confengine.LoadConfigPath(flagConfigPath)
	if err != nil {
		return err
	}

	var defaults brokerDefaults
	if err := conf.UnpackChild("broker", &defaults); err != nil {
		return err
	}

	if !rootCmd.PersistentFlags().Changed("host") && defaults.Host != "" {
		flagHost = defaults.Host
	}
	if !rootCmd.PersistentFlags().Changed("port") && defaults.Port != 0 {
		flagPort = defaults.Port
	}
	if !rootCmd.PersistentFlags().Changed("user") && defaults.User != "" {
		flagUser = defaults.User
	}
	if !rootCmd.PersistentFlags().Changed("password") && defaults.Password != "" {
		flagPassword = defaults.Password
	}
	if !rootCmd.PersistentFlags().Changed("vhost") && defaults.VHost != "" {
		flagVHost = defaults.VHost
	}
	return nil
}
