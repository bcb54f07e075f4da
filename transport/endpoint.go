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

// Package transport implements the single-connection wrapper around a TCP
// socket to a tracker or storage node: connect-with-timeout, deadline-bound
// reads and writes, and graceful/forced close.
package transport

import (
	"fmt"
	"net"
	"strconv"

	liberr "fdfsclient/fdfserr"
)

// Endpoint is a (host, port) pair used as the connection pool's keying
// identity (§3). Host may be an IPv4/IPv6 literal or a resolvable name.
type Endpoint struct {
	Host string
	Port int
}

// NewEndpoint parses "host:port" into an Endpoint.
func NewEndpoint(addr string) (Endpoint, liberr.Error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return Endpoint{}, liberr.New(liberr.InvalidArgument.Uint16(),
			fmt.Sprintf("invalid endpoint address %q: %s", addr, err.Error()))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Endpoint{}, liberr.New(liberr.InvalidArgument.Uint16(),
			fmt.Sprintf("invalid port in address %q", addr))
	}

	return Endpoint{Host: host, Port: port}, nil
}

// String renders the endpoint as "host:port", the pool's lookup key.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
