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
	"time"

	"github.com/hashicorp/go-multierror"

	"fdfsclient/fdfserr"
	"fdfsclient/trackerclient"
	"fdfsclient/transport"
)

// trackerQuery is one of trackerclient's QueryStoreWithoutGroup/
// QueryStoreWithGroup/QueryFetch/QueryUpdate, already bound to its
// operation-specific arguments except the transport and deadline.
type trackerQuery func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error)

// queryTracker borrows a tracker transport (rotating across configured
// trackers on each attempt), runs query against it, and releases it before
// returning — tracker connections are never held across the storage step
// (§4.6 steps 1-3). Retries up to retryCount additional times for
// transient failures, rotating to a different tracker each attempt.
func (c *Client) queryTracker(ctx context.Context, op string, query trackerQuery) (trackerclient.Location, fdfserr.Error) {
	var errs *multierror.Error

	attempts := c.retryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry(op)
		}

		ep := c.nextTracker()

		tr, berr := c.pool.Borrow(ctx, ep)
		if berr != nil {
			errs = multierror.Append(errs, berr)
			if !retryableError(berr) {
				return trackerclient.Location{}, berr
			}
			continue
		}

		var loc trackerclient.Location
		var qerr fdfserr.Error
		cerr := runCancellable(ctx, tr, func() fdfserr.Error {
			loc, qerr = query(tr, c.networkTimeout)
			return qerr
		})
		if cerr != nil && cerr.HasCode(fdfserr.Cancelled) {
			c.releaseOrDiscard(ep, tr, cerr)
			return trackerclient.Location{}, cerr
		}

		c.releaseOrDiscard(ep, tr, qerr)

		if qerr == nil {
			return loc, nil
		}

		errs = multierror.Append(errs, qerr)
		if !retryableError(qerr) {
			return trackerclient.Location{}, qerr
		}
	}

	return trackerclient.Location{}, fdfserr.New(fdfserr.NoStorageAvailable.Uint16(),
		"exhausted retries querying tracker", errs.ErrorOrNil())
}
