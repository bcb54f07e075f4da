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

package wire

import (
	"encoding/binary"
	"fmt"

	liberr "fdfsclient/fdfserr"
)

// HeaderSize is the fixed length of a frame header on the wire (§3).
const HeaderSize = 10

// Header is the 10-byte frame header preceding every request and response
// body: an 8-byte big-endian body length, a 1-byte command, a 1-byte status.
type Header struct {
	BodyLength int64
	Command    Command
	Status     byte
}

// Encode packs h into a fresh 10-byte buffer.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(h.BodyLength))
	buf[8] = byte(h.Command)
	buf[9] = h.Status
	return buf
}

// DecodeHeader unpacks a 10-byte header. maxBody bounds BodyLength so a
// corrupted or hostile peer cannot force an unbounded allocation downstream.
func DecodeHeader(b []byte, maxBody int64) (Header, liberr.Error) {
	if len(b) < HeaderSize {
		return Header{}, liberr.New(liberr.ProtocolError.Uint16(),
			fmt.Sprintf("short frame header: %d bytes", len(b)))
	}

	length := int64(binary.BigEndian.Uint64(b[0:8]))
	if length < 0 {
		return Header{}, liberr.New(liberr.ProtocolError.Uint16(), "negative body length in frame header")
	}
	if maxBody > 0 && length > maxBody {
		return Header{}, liberr.New(liberr.ProtocolError.Uint16(),
			fmt.Sprintf("body length %d exceeds maximum %d", length, maxBody))
	}

	return Header{
		BodyLength: length,
		Command:    Command(b[8]),
		Status:     b[9],
	}, nil
}

// PutFixedString encodes s left-justified into exactly width bytes, padding
// the remainder with 0x00 (§4.1).
func PutFixedString(s string, width int) []byte {
	buf := make([]byte, width)
	n := copy(buf, s)
	_ = n
	return buf
}

// GetFixedString strips all trailing 0x00 bytes from a fixed-width field.
func GetFixedString(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0x00 {
		end--
	}
	return string(b[:end])
}

// PutInt64 encodes a signed 64-bit big-endian integer (file size, offset, length).
func PutInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

// GetInt64 decodes a signed 64-bit big-endian integer from the first 8 bytes
// of b; a shorter b is a ProtocolError.
func GetInt64(b []byte) (int64, liberr.Error) {
	if len(b) < 8 {
		return 0, liberr.New(liberr.ProtocolError.Uint16(), "truncated int64 field")
	}
	return int64(binary.BigEndian.Uint64(b[:8])), nil
}

// PutInt32 encodes a signed 32-bit big-endian integer (create-time).
func PutInt32(v int32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(v))
	return buf
}

// GetInt32 decodes a signed 32-bit big-endian integer from the first 4 bytes
// of b; a shorter b is a ProtocolError.
func GetInt32(b []byte) (int32, liberr.Error) {
	if len(b) < 4 {
		return 0, liberr.New(liberr.ProtocolError.Uint16(), "truncated int32 field")
	}
	return int32(binary.BigEndian.Uint32(b[:4])), nil
}

// PutUint32 encodes an unsigned 32-bit big-endian integer (crc32).
func PutUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

// GetUint32 decodes an unsigned 32-bit big-endian integer from the first 4
// bytes of b; a shorter b is a ProtocolError.
func GetUint32(b []byte) (uint32, liberr.Error) {
	if len(b) < 4 {
		return 0, liberr.New(liberr.ProtocolError.Uint16(), "truncated uint32 field")
	}
	return binary.BigEndian.Uint32(b[:4]), nil
}

// Field widths for fixed-width string fields (§4.1).
const (
	GroupNameWidth   = 16
	FileExtWidth     = 6
	IPAddressWidth   = 16
	IPAddressOnWire  = 15 // tracker responses encode the IP in 15 bytes, not 16 (§4.4 table)
	StorageIDWidth   = 16
)
