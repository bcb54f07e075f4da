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

package client

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"fdfsclient/fdfserr"
	"fdfsclient/transport"
)

// storageOp is one storageclient call, already bound to its arguments except
// the transport and deadline; it reports its outcome through fdfserr.Error
// and, when it produces a value, through a variable closed over by the caller.
type storageOp func(tr *transport.Transport) fdfserr.Error

// withStorage borrows a transport to ep, runs fn under cancellation, and
// releases or discards it depending on the outcome (§4.6 steps 4-6).
func (c *Client) withStorage(ctx context.Context, ep transport.Endpoint, fn storageOp) fdfserr.Error {
	tr, berr := c.pool.Borrow(ctx, ep)
	if berr != nil {
		return berr
	}

	var operr fdfserr.Error
	cerr := runCancellable(ctx, tr, func() fdfserr.Error {
		operr = fn(tr)
		return operr
	})
	if cerr != nil && cerr.HasCode(fdfserr.Cancelled) {
		c.releaseOrDiscard(ep, tr, cerr)
		return cerr
	}

	c.releaseOrDiscard(ep, tr, operr)
	return operr
}

// operate runs the full tracker-then-storage sequence for a fetch- or
// update-class operation (§4.6): locate via query, then run storage against
// the resolved endpoint, retrying up to retryCount times on retryable
// failures. query is re-issued on every attempt rather than cached — for
// query-update this is harmless, since the tracker always names the same
// authoritative source (so it behaves as "no failover" per §4.6 without a
// separate code path), while for query-fetch it naturally resolves to a
// different replica when the previous one just failed. failover only
// controls whether the attempt is counted against fdfs_tracker_failover_total.
func (c *Client) operate(ctx context.Context, op string, query trackerQuery, failover bool, storage storageOp) fdfserr.Error {
	if err := c.checkClosed(); err != nil {
		return err
	}

	var errs *multierror.Error
	attempts := c.retryCount + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry(op)
		}

		loc, lerr := c.queryTracker(ctx, op, query)
		if lerr != nil {
			errs = multierror.Append(errs, lerr)
			if !retryableError(lerr) {
				c.metrics.IncOperation(op, "error")
				return lerr
			}
			continue
		}

		serr := c.withStorage(ctx, loc.Endpoint, storage)
		if serr == nil {
			c.metrics.IncOperation(op, "ok")
			return nil
		}

		errs = multierror.Append(errs, serr)
		if !retryableError(serr) {
			c.metrics.IncOperation(op, "error")
			return serr
		}
		if failover {
			c.metrics.IncTrackerFailover()
		}
	}

	c.metrics.IncOperation(op, "error")
	return fdfserr.New(fdfserr.NoStorageAvailable.Uint16(),
		fmt.Sprintf("exhausted retries on %s", op), errs.ErrorOrNil())
}
