/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command fdfsctl is a thin command-line front end over the fdfsclient
// library: one subcommand per client operation, a shared set of persistent
// flags for tracker addresses and timeouts, and an optional viper config
// file for anything not worth typing on every invocation.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fdfsclient/client"
	"fdfsclient/config"
	"fdfsclient/fdfslog"
	"fdfsclient/metrics"
)

var (
	flagConfig   string
	flagTrackers []string
	flagTimeout  time.Duration
	flagRetry    int
	flagLogLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fdfsctl",
		Short:         "Command line client for a FastDFS-style storage cluster",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a viper config file (yaml/toml/json)")
	root.PersistentFlags().StringSliceVar(&flagTrackers, "tracker", nil, "tracker address host:port, repeatable")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "network timeout override")
	root.PersistentFlags().IntVar(&flagRetry, "retry", -1, "retry count override")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "panic|fatal|error|warning|info|debug")

	root.AddCommand(
		newUploadCmd(),
		newUploadAppenderCmd(),
		newUploadSlaveCmd(),
		newDownloadCmd(),
		newDeleteCmd(),
		newAppendCmd(),
		newModifyCmd(),
		newTruncateCmd(),
		newGetMetadataCmd(),
		newSetMetadataCmd(),
		newInfoCmd(),
	)

	return root
}

// newClient assembles a config.Config from --config plus the persistent
// flag overrides and dials a client.Client against it.
func newClient() (*client.Client, error) {
	cfg := config.Default()

	if flagConfig != "" {
		vip := viper.New()
		vip.SetConfigFile(flagConfig)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		loaded, cerr := config.FromViper(vip, "")
		if cerr != nil {
			return nil, cerr
		}
		cfg = loaded
	}

	if len(flagTrackers) > 0 {
		cfg.TrackerAddrs = flagTrackers
	}
	if flagTimeout > 0 {
		cfg.NetworkTimeout = flagTimeout
	}
	if flagRetry >= 0 {
		cfg.RetryCount = flagRetry
	}

	if len(cfg.TrackerAddrs) == 0 {
		return nil, fmt.Errorf("no tracker address given: pass --tracker or --config")
	}

	log := fdfslog.New(os.Stderr, fdfslog.Parse(flagLogLevel))
	mc := metrics.NewCollector(nil)

	c, err := client.New(cfg, log, mc)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func printSuccess(format string, a ...interface{}) {
	_, _ = color.New(color.FgGreen).Fprintf(os.Stdout, format+"\n", a...)
}

func printError(err error) {
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
