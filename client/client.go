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

// Package client is the Operations Orchestrator, the public API of this
// module (§4.6): it composes a tracker routing step with a storage data
// step, applying retry, failover, and cancellation policy around both.
package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fdfsclient/config"
	"fdfsclient/fdfserr"
	"fdfsclient/fdfslog"
	"fdfsclient/metrics"
	"fdfsclient/pool"
	"fdfsclient/transport"
)

// Client is safe for concurrent use by any number of callers (§5): each
// caller's operation runs to completion sequentially but many may be in
// flight at once, sharing only the connection pool.
type Client struct {
	id uuid.UUID

	trackers []transport.Endpoint
	trackIdx atomic.Uint64

	pool       *pool.Pool
	retryCount int

	connectTimeout time.Duration
	networkTimeout time.Duration

	log     fdfslog.Logger
	metrics *metrics.Collector

	closed atomic.Bool
}

// New builds a Client from cfg. log and mc may be nil; a nil log falls back
// to a discard sink and a nil mc makes every metrics call a no-op.
func New(cfg config.Config, log fdfslog.Logger, mc *metrics.Collector) (*Client, fdfserr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	trackers := make([]transport.Endpoint, 0, len(cfg.TrackerAddrs))
	for _, addr := range cfg.TrackerAddrs {
		ep, eerr := transport.NewEndpoint(addr)
		if eerr != nil {
			return nil, eerr
		}
		trackers = append(trackers, ep)
	}

	if log == nil {
		log = fdfslog.Discard()
	}

	p := pool.New(pool.Config{
		MaxConns:       cfg.MaxConns,
		ConnectTimeout: cfg.ConnectTimeout,
		NetworkTimeout: cfg.NetworkTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		EnablePool:     cfg.EnablePool,
	}, mc)

	id := uuid.New()
	c := &Client{
		id:             id,
		trackers:       trackers,
		pool:           p,
		retryCount:     cfg.RetryCount,
		connectTimeout: cfg.ConnectTimeout,
		networkTimeout: cfg.NetworkTimeout,
		log:            log.WithFields(fdfslog.Fields{"client_id": id.String()}),
		metrics:        mc,
	}
	return c, nil
}

// Close drains the pool; every subsequent call on c returns ClientClosed
// (§8 invariant 8).
func (c *Client) Close() error {
	c.closed.Store(true)
	return c.pool.Close()
}

func (c *Client) checkClosed() fdfserr.Error {
	if c.closed.Load() {
		return fdfserr.New(fdfserr.ClientClosed.Uint16(), "client is closed")
	}
	return nil
}

// nextTracker rotates across configured trackers so consecutive retries
// (and consecutive unrelated calls) spread load and advance past a
// momentarily unreachable tracker (§4.6 retry policy).
func (c *Client) nextTracker() transport.Endpoint {
	i := c.trackIdx.Add(1) - 1
	return c.trackers[int(i)%len(c.trackers)]
}

// runCancellable races fn (which must use tr) against ctx. If ctx fires
// first, tr is force-closed so fn's in-flight read/write unblocks with an
// error, and Cancelled is returned instead of fn's own error (§4.6, §5).
func runCancellable(ctx context.Context, tr *transport.Transport, fn func() fdfserr.Error) fdfserr.Error {
	done := make(chan fdfserr.Error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = tr.ForceClose()
		<-done
		return fdfserr.New(fdfserr.Cancelled.Uint16(), "operation cancelled", ctx.Err())
	}
}

// discardableError reports whether err means the transport must not be
// reused (§7 propagation policy: Transport/Timeout/ProtocolError/ServerError
// or Cancelled all poison their connection; logical failures do not, since
// the connection itself is still healthy).
func discardableError(err fdfserr.Error) bool {
	if err == nil {
		return false
	}
	return err.HasCode(fdfserr.Transport) ||
		err.HasCode(fdfserr.Timeout) ||
		err.HasCode(fdfserr.ProtocolError) ||
		err.HasCode(fdfserr.Cancelled) ||
		err.HasCode(fdfserr.ServerError)
}

// retryableError reports whether the orchestrator should retry the whole
// tracker+storage sequence rather than surface err immediately (§7).
func retryableError(err fdfserr.Error) bool {
	if err == nil {
		return false
	}
	return err.HasCode(fdfserr.Transport) ||
		err.HasCode(fdfserr.Timeout) ||
		err.HasCode(fdfserr.NoStorageAvailable)
}

func (c *Client) releaseOrDiscard(ep transport.Endpoint, tr *transport.Transport, err fdfserr.Error) {
	if discardableError(err) || tr.Poisoned() {
		c.pool.Discard(ep, tr)
		return
	}
	c.pool.Release(ep, tr)
}
