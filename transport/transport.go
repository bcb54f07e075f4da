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

package transport

import (
	"io"
	"net"
	"sync/atomic"
	"time"

	liberr "fdfsclient/fdfserr"
	"fdfsclient/wire"
)

// Transport wraps one connected TCP socket to a single Endpoint. It is not
// safe for concurrent use by multiple goroutines at once — the pool
// guarantees at-most-one borrower (§3 Pooled connection invariant).
type Transport struct {
	endpoint Endpoint
	conn     net.Conn
	poisoned atomic.Bool
	lastUse  atomic.Int64
}

// Dial establishes a new Transport to endpoint, bounded by connectTimeout.
func Dial(endpoint Endpoint, connectTimeout time.Duration) (*Transport, liberr.Error) {
	d := net.Dialer{Timeout: connectTimeout}

	conn, err := d.Dial("tcp", endpoint.String())
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, liberr.New(liberr.Timeout.Uint16(), "connect timed out", err)
		}
		return nil, liberr.New(liberr.Transport.Uint16(), "connect failed", err)
	}

	t := &Transport{endpoint: endpoint, conn: conn}
	t.touch()
	return t, nil
}

// Endpoint returns the remote endpoint this transport is connected to.
func (t *Transport) Endpoint() Endpoint {
	return t.endpoint
}

// touch stamps the transport with the current time, reported by IdleFor.
// The pool's idle eviction (§4.3) uses its own release timestamp instead.
func (t *Transport) touch() {
	t.lastUse.Store(time.Now().UnixNano())
}

// IdleFor reports how long it has been since this transport was last used.
func (t *Transport) IdleFor() time.Duration {
	return time.Since(time.Unix(0, t.lastUse.Load()))
}

// Poisoned reports whether this transport observed an I/O error and must
// never be returned to the pool (§4.2).
func (t *Transport) Poisoned() bool {
	return t.poisoned.Load()
}

func (t *Transport) poison() {
	t.poisoned.Store(true)
}

// ReadFull reads exactly len(buf) bytes before deadline, or fails. A short
// read due to EOF maps to a Transport error carrying io.ErrUnexpectedEOF
// (§4.2 TransportError::UnexpectedEOF).
func (t *Transport) ReadFull(buf []byte, deadline time.Duration) liberr.Error {
	if err := t.conn.SetReadDeadline(t.deadlineFrom(deadline)); err != nil {
		t.poison()
		return liberr.New(liberr.Transport.Uint16(), "set read deadline failed", err)
	}

	_, err := io.ReadFull(t.conn, buf)
	if err != nil {
		t.poison()
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return liberr.New(liberr.Timeout.Uint16(), "read timed out", err)
		}
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return liberr.New(liberr.Transport.Uint16(), "unexpected EOF", io.ErrUnexpectedEOF)
		}
		return liberr.New(liberr.Transport.Uint16(), "read failed", err)
	}

	t.touch()
	return nil
}

// WriteAll writes the entirety of buf before deadline, or fails.
func (t *Transport) WriteAll(buf []byte, deadline time.Duration) liberr.Error {
	if err := t.conn.SetWriteDeadline(t.deadlineFrom(deadline)); err != nil {
		t.poison()
		return liberr.New(liberr.Transport.Uint16(), "set write deadline failed", err)
	}

	n, err := t.conn.Write(buf)
	if err != nil {
		t.poison()
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return liberr.New(liberr.Timeout.Uint16(), "write timed out", err)
		}
		return liberr.New(liberr.Transport.Uint16(), "write failed", err)
	}
	if n != len(buf) {
		t.poison()
		return liberr.New(liberr.Transport.Uint16(), "short write")
	}

	t.touch()
	return nil
}

// CopyFrom streams exactly n bytes from r onto the wire, deadline-bound per
// chunk, without buffering the whole payload — the upload "file/stream"
// variant of §4.5's streaming contract.
func (t *Transport) CopyFrom(r io.Reader, n int64, deadline time.Duration, chunk int) liberr.Error {
	if chunk <= 0 {
		chunk = 64 * 1024
	}

	buf := make([]byte, chunk)
	var sent int64

	for sent < n {
		want := int64(chunk)
		if remain := n - sent; remain < want {
			want = remain
		}

		rn, rerr := io.ReadFull(r, buf[:want])
		if rerr != nil {
			return liberr.New(liberr.Transport.Uint16(), "reading upload source failed", rerr)
		}

		if werr := t.WriteAll(buf[:rn], deadline); werr != nil {
			return werr
		}

		sent += int64(rn)
	}

	return nil
}

// CopyTo streams exactly n bytes off the wire into w, deadline-bound per
// chunk, without buffering the whole payload — the download "file/stream"
// variant of §4.5's streaming contract.
func (t *Transport) CopyTo(w io.Writer, n int64, deadline time.Duration, chunk int) liberr.Error {
	if chunk <= 0 {
		chunk = 64 * 1024
	}

	buf := make([]byte, chunk)
	var recv int64

	for recv < n {
		want := int64(chunk)
		if remain := n - recv; remain < want {
			want = remain
		}

		if err := t.ReadFull(buf[:want], deadline); err != nil {
			return err
		}

		if _, werr := w.Write(buf[:want]); werr != nil {
			return liberr.New(liberr.Transport.Uint16(), "writing download sink failed", werr)
		}

		recv += want
	}

	return nil
}

func (t *Transport) deadlineFrom(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

// Close sends a quit command (§4.2) then closes the socket. Errors sending
// the quit frame are ignored — the socket is closed regardless.
func (t *Transport) Close(writeDeadline time.Duration) error {
	h := wire.Header{Command: wire.CmdQuit}
	_ = t.WriteAll(h.Encode(), writeDeadline)
	return t.conn.Close()
}

// ForceClose drops the socket immediately without sending a quit command,
// used when the transport is poisoned or cancellation fired mid-operation.
func (t *Transport) ForceClose() error {
	return t.conn.Close()
}
