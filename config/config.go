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

// Package config holds the client's recognized options (§6) and loads them
// from a github.com/spf13/viper instance the way the rest of this codebase's
// components are configured.
package config

import (
	"time"

	"github.com/spf13/viper"

	liberr "fdfsclient/fdfserr"
)

// Config is the typed form of §6's recognized options.
type Config struct {
	TrackerAddrs   []string      `mapstructure:"tracker_addrs"`
	MaxConns       int           `mapstructure:"max_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	NetworkTimeout time.Duration `mapstructure:"network_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RetryCount     int           `mapstructure:"retry_count"`
	EnablePool     bool          `mapstructure:"enable_pool"`
}

// Default returns a Config pre-filled with §6's documented defaults.
func Default() Config {
	return Config{
		MaxConns:       10,
		ConnectTimeout: 5 * time.Second,
		NetworkTimeout: 30 * time.Second,
		IdleTimeout:    60 * time.Second,
		RetryCount:     2,
		EnablePool:     true,
	}
}

// Validate enforces the client's preconditions on its own configuration: an
// empty tracker list is a caller error, not something the orchestrator can
// retry its way out of.
func (c Config) Validate() liberr.Error {
	if len(c.TrackerAddrs) == 0 {
		return liberr.New(liberr.InvalidArgument.Uint16(), "tracker_addrs must list at least one host:port")
	}
	if c.MaxConns <= 0 {
		return liberr.New(liberr.InvalidArgument.Uint16(), "max_conns must be positive")
	}
	if c.RetryCount < 0 {
		return liberr.New(liberr.InvalidArgument.Uint16(), "retry_count must not be negative")
	}
	return nil
}

// FromViper unmarshals Config from key within vip, applying Default first so
// options the caller's configuration source omits keep their documented value.
func FromViper(vip *viper.Viper, key string) (Config, liberr.Error) {
	cfg := Default()

	var sub *viper.Viper
	if key == "" {
		sub = vip
	} else {
		sub = vip.Sub(key)
		if sub == nil {
			return cfg, nil
		}
	}

	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, liberr.New(liberr.InvalidArgument.Uint16(), "failed to unmarshal client configuration", err)
	}

	return cfg, nil
}
