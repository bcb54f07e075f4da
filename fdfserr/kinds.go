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

package fdfserr

// Kind is the closed taxonomy of error classifications the client surfaces,
// one CodeError constant per clause of the client's error handling design.
const (
	// InvalidArgument: caller-provided input violates a precondition.
	InvalidArgument CodeError = MinAvailable + iota
	// NotFound: server reported ENOENT for the referenced file.
	NotFound
	// AlreadyExists: server reported a duplicate-file status.
	AlreadyExists
	// InsufficientSpace: server reported out-of-space.
	InsufficientSpace
	// NoStorageAvailable: the tracker had no viable storage for the request.
	NoStorageAvailable
	// Transport: a connect/read/write failure occurred.
	Transport
	// Timeout: a configured deadline expired.
	Timeout
	// ProtocolError: the server response was malformed or inconsistent.
	ProtocolError
	// ServerError: any non-zero status byte not covered by a more specific kind.
	ServerError
	// Cancelled: the caller's cancellation signal was observed.
	Cancelled
	// ClientClosed: the operation was attempted after the pool was closed.
	ClientClosed
)

func init() {
	RegisterIdFctMessage(InvalidArgument, func(code CodeError) string {
		switch code {
		case InvalidArgument:
			return "invalid argument"
		case NotFound:
			return "file not found"
		case AlreadyExists:
			return "file already exists"
		case InsufficientSpace:
			return "insufficient storage space"
		case NoStorageAvailable:
			return "no storage node available for this request"
		case Transport:
			return "transport error"
		case Timeout:
			return "operation timed out"
		case ProtocolError:
			return "malformed or inconsistent server response"
		case ServerError:
			return "server reported an error"
		case Cancelled:
			return "operation cancelled"
		case ClientClosed:
			return "client is closed"
		}
		return UnknownMessage
	})
}

// IsNotFound reports whether err (or any of its parents) carries NotFound.
func IsNotFound(err error) bool {
	return hasKind(err, NotFound)
}

// IsCancelled reports whether err (or any of its parents) carries Cancelled.
func IsCancelled(err error) bool {
	return hasKind(err, Cancelled)
}

// IsClientClosed reports whether err (or any of its parents) carries ClientClosed.
func IsClientClosed(err error) bool {
	return hasKind(err, ClientClosed)
}

func hasKind(err error, code CodeError) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(Error); ok {
		return e.HasCode(code)
	}
	return false
}
