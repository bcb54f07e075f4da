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
	"io"
	"time"

	"fdfsclient/fdfserr"
	"fdfsclient/fileid"
	"fdfsclient/storageclient"
	"fdfsclient/trackerclient"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

// Upload stores data (exactly size bytes) as a plain file and returns the
// File ID the storage node assigned (§4.5 upload-file, §4.6).
func (c *Client) Upload(ctx context.Context, fileExt string, size int64, data io.Reader, chunk int) (fileid.FileID, fdfserr.Error) {
	return c.upload(ctx, "upload", "", fileExt, size, data, chunk, storageclient.UploadFile)
}

// UploadAppender stores data as an appender file, which may later accept
// Append, Modify and Truncate (§4.5 upload-appender-file, §4.6).
func (c *Client) UploadAppender(ctx context.Context, fileExt string, size int64, data io.Reader, chunk int) (fileid.FileID, fdfserr.Error) {
	return c.upload(ctx, "upload-appender", "", fileExt, size, data, chunk, storageclient.UploadAppenderFile)
}

// UploadSlave stores data as a slave file co-located with master's group,
// distinguished from other slaves of the same master by prefix (§4.5
// upload-slave-file). The master's group is reused unchanged: no group
// re-resolution is performed (§3.3).
func (c *Client) UploadSlave(ctx context.Context, master fileid.FileID, prefix, fileExt string, size int64, data io.Reader, chunk int) (fileid.FileID, fdfserr.Error) {
	fn := func(tr *transport.Transport, timeout time.Duration, _ byte, ext string, sz int64, r io.Reader, ch int) (storageclient.FileResult, fdfserr.Error) {
		return storageclient.UploadSlaveFile(tr, timeout, master.Filename, prefix, ext, sz, r, ch)
	}
	return c.upload(ctx, "upload-slave", master.Group, fileExt, size, data, chunk, fn)
}

// Download streams length bytes (0 = to end) of id starting at offset into
// w (§4.5 download-file). A retryable storage failure re-queries the
// tracker for a different replica (fetch-class failover, §4.6); on retry w
// receives the stream from offset again, so a caller that cares about
// partial writes on a failed attempt should reset w itself before retrying.
func (c *Client) Download(ctx context.Context, id fileid.FileID, offset, length int64, w io.Writer, chunk int) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryFetch(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "download", query, true, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.DownloadFile(tr, c.networkTimeout, id.Group, id.Filename, offset, length, w, chunk)
	})
}

// Delete removes id (§4.5 delete-file). Update-class: does not failover
// across replicas (§4.6).
func (c *Client) Delete(ctx context.Context, id fileid.FileID) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryUpdate(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "delete", query, false, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.DeleteFile(tr, c.networkTimeout, id.Group, id.Filename)
	})
}

// Append appends dataSize bytes of data to the appender file id (§4.5
// append-file). Update-class.
func (c *Client) Append(ctx context.Context, id fileid.FileID, dataSize int64, data io.Reader, chunk int) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryUpdate(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "append", query, false, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.AppendFile(tr, c.networkTimeout, id.Filename, dataSize, data, chunk)
	})
}

// Modify overwrites dataSize bytes of the appender file id starting at
// offset (§4.5 modify-file). Update-class.
func (c *Client) Modify(ctx context.Context, id fileid.FileID, offset, dataSize int64, data io.Reader, chunk int) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryUpdate(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "modify", query, false, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.ModifyFile(tr, c.networkTimeout, id.Filename, offset, dataSize, data, chunk)
	})
}

// Truncate shrinks or extends the appender file id to targetSize (§4.5
// truncate-file). Update-class.
func (c *Client) Truncate(ctx context.Context, id fileid.FileID, targetSize int64) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryUpdate(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "truncate", query, false, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.TruncateFile(tr, c.networkTimeout, id.Filename, targetSize)
	})
}

// SetMetadata applies md to id under flag (wire.MetadataFlagOverwrite or
// wire.MetadataFlagMerge), §4.5 set-metadata. Update-class.
func (c *Client) SetMetadata(ctx context.Context, id fileid.FileID, flag byte, md wire.Metadata) fdfserr.Error {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryUpdate(tr, timeout, id.Group, id.Filename)
	}
	return c.operate(ctx, "set-metadata", query, false, func(tr *transport.Transport) fdfserr.Error {
		return storageclient.SetMetadata(tr, c.networkTimeout, id.Group, id.Filename, flag, md)
	})
}

// GetMetadata retrieves the metadata map attached to id (§4.5 get-metadata).
// Fetch-class: failover-eligible.
func (c *Client) GetMetadata(ctx context.Context, id fileid.FileID) (wire.Metadata, fdfserr.Error) {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryFetch(tr, timeout, id.Group, id.Filename)
	}
	var md wire.Metadata
	err := c.operate(ctx, "get-metadata", query, true, func(tr *transport.Transport) fdfserr.Error {
		var operr fdfserr.Error
		md, operr = storageclient.GetMetadata(tr, c.networkTimeout, id.Group, id.Filename)
		return operr
	})
	return md, err
}

// GetFileInfo retrieves size/create-time/crc32/source-ip for id (§4.5
// query-file-info). Fetch-class: failover-eligible.
func (c *Client) GetFileInfo(ctx context.Context, id fileid.FileID) (storageclient.FileInfo, fdfserr.Error) {
	query := func(tr *transport.Transport, timeout time.Duration) (trackerclient.Location, fdfserr.Error) {
		return trackerclient.QueryFetch(tr, timeout, id.Group, id.Filename)
	}
	var info storageclient.FileInfo
	err := c.operate(ctx, "get-file-info", query, true, func(tr *transport.Transport) fdfserr.Error {
		var operr fdfserr.Error
		info, operr = storageclient.QueryFileInfo(tr, c.networkTimeout, id.Group, id.Filename)
		return operr
	})
	return info, err
}
