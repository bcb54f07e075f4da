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
	"io"
	"time"

	"github.com/hashicorp/go-multierror"

	"fdfsclient/fdfserr"
	"fdfsclient/fileid"
	"fdfsclient/storageclient"
	"fdfsclient/trackerclient"
	"fdfsclient/transport"
)

// uploadFn is one of storageclient.UploadFile / UploadAppenderFile, already
// picking the opcode but still taking the path index and file body.
type uploadFn func(tr *transport.Transport, timeout time.Duration, pathIndex byte, fileExt string, size int64, data io.Reader, chunk int) (storageclient.FileResult, fdfserr.Error)

// upload runs the store-then-upload composition of §4.6 for plain and
// appender files (§3.3's "same store-then-upload composition as Upload").
// The first attempt picks any group via query-store-without-group; once a
// group is chosen, retries stay within it via query-store-with-group,
// matching "upload-class operations ... do failover within a group" (§4.6).
// A retry re-reads data from the start, so data must implement io.Seeker to
// be retried at all; a non-seekable source fails immediately on any
// retryable storage error rather than risk sending a corrupt partial body.
func (c *Client) upload(ctx context.Context, op string, group, fileExt string, size int64, data io.Reader, chunk int, fn uploadFn) (fileid.FileID, fdfserr.Error) {
	if err := c.checkClosed(); err != nil {
		return fileid.FileID{}, err
	}
	if chunk <= 0 {
		chunk = storageclient.DefaultChunkSize
	}

	var errs *multierror.Error
	attempts := c.retryCount + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.metrics.IncRetry(op)
		}

		var query trackerQuery
		if group == "" {
			query = trackerclient.QueryStoreWithoutGroup
		} else {
			g := group
			query = func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
				return trackerclient.QueryStoreWithGroup(tr, timeout, g)
			}
		}

		loc, lerr := c.queryTracker(ctx, op, query)
		if lerr != nil {
			errs = multierror.Append(errs, lerr)
			if !retryableError(lerr) {
				c.metrics.IncOperation(op, "error")
				return fileid.FileID{}, lerr
			}
			continue
		}
		group = loc.Group

		var res storageclient.FileResult
		serr := c.withStorage(ctx, loc.Endpoint, func(tr *transport.Transport) fdfserr.Error {
			var operr fdfserr.Error
			res, operr = fn(tr, c.networkTimeout, loc.PathIndex, fileExt, size, data, chunk)
			return operr
		})
		if serr == nil {
			c.metrics.IncOperation(op, "ok")
			return fileid.FileID{Group: res.Group, Filename: res.Filename}, nil
		}

		errs = multierror.Append(errs, serr)
		if !retryableError(serr) {
			c.metrics.IncOperation(op, "error")
			return fileid.FileID{}, serr
		}

		seeker, ok := data.(io.Seeker)
		if !ok {
			c.metrics.IncOperation(op, "error")
			return fileid.FileID{}, serr
		}
		if _, serr2 := seeker.Seek(0, io.SeekStart); serr2 != nil {
			c.metrics.IncOperation(op, "error")
			return fileid.FileID{}, fdfserr.New(fdfserr.Transport.Uint16(),
				"cannot rewind upload source for retry", serr2)
		}
		c.metrics.IncTrackerFailover()
	}

	c.metrics.IncOperation(op, "error")
	return fileid.FileID{}, fdfserr.New(fdfserr.NoStorageAvailable.Uint16(),
		fmt.Sprintf("exhausted retries on %s", op), errs.ErrorOrNil())
}
