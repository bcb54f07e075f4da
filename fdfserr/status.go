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

import "fmt"

// Status bytes reported by the server in a response frame's header (§3, §4.1).
const (
	StatusOK                 = 0
	StatusENOENT             = 2
	StatusEExist             = 6
	StatusENoSpace           = 28
)

// Status bytes the orchestrator treats as retryable (§7: "transient" server
// status bytes) are decided by IsTransientStatus below. None of the named
// taxonomy codes are transient; a busy/overloaded storage node reports status
// bytes outside the named set, so any unmapped non-zero status is the only
// retryable server-side case. FromStatus maps such a byte to ServerError.

// FromStatus maps a response frame's status byte to the client's error
// taxonomy (§7). op names the operation for the resulting message.
func FromStatus(op string, status byte) Error {
	if status == StatusOK {
		return nil
	}

	switch status {
	case StatusENOENT:
		return NotFound.Error().(Error)
	case StatusEExist:
		return AlreadyExists.Error().(Error)
	case StatusENoSpace:
		return InsufficientSpace.Error().(Error)
	default:
		return New(ServerError.Uint16(), fmt.Sprintf("%s: server status %d", op, status))
	}
}

// IsTransientStatus reports whether a non-zero status byte should be retried
// by the orchestrator rather than surfaced immediately (§7 propagation policy).
// Only status bytes outside the named taxonomy (ENOENT/EExist/ENoSpace) are
// treated as transient server-side conditions; those three are always
// surfaced immediately since retrying cannot change a logical outcome.
func IsTransientStatus(status byte) bool {
	switch status {
	case StatusOK, StatusENOENT, StatusEExist, StatusENoSpace:
		return false
	default:
		return true
	}
}
