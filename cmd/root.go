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

// Package cmd implements rmqctl, a small cobra CLI driving the topology
// operations spec.md §6 names (declare/delete exchange and queue,
// bind/unbind queue) against a broker through the client package.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/packetd/rmqcore/common"
	"github.com/packetd/rmqcore/logger"
)

var (
	flagHost        string
	flagPort        int
	flagUser        string
	flagPassword    string
	flagVHost       string
	flagVerbose     bool
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "rmqctl",
	Short: "rmqctl drives AMQP 0-9-1 broker topology operations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if flagVerbose {
			level = "debug"
		}
		logger.SetLoggerLevel(level)
		return applyConfigDefaults()
	},
}

// Execute runs the CLI; main calls this and exits non-zero on error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "127.0.0.1", "broker host")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", common.DefaultAMQPPort, "broker port")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "guest", "broker username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "guest", "broker password")
	rootCmd.PersistentFlags().StringVar(&flagVHost, "vhost", "/", "broker vhost")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "optional address to serve /metrics on while the command runs")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "optional YAML file supplying broker connection defaults")

	rootCmd.AddCommand(declareExchangeCmd)
	rootCmd.AddCommand(deleteExchangeCmd)
	rootCmd.AddCommand(declareQueueCmd)
	rootCmd.AddCommand(deleteQueueCmd)
	rootCmd.AddCommand(bindQueueCmd)
	rootCmd.AddCommand(unbindQueueCmd)
}
