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
	"fmt"
	"sort"
	"strings"

	liberr "fdfsclient/fdfserr"
)

const (
	metaFieldSep = byte(0x02)
	metaPairSep  = byte(0x01)

	// MaxMetadataKey and MaxMetadataValue bound a single metadata entry (§3).
	MaxMetadataKey   = 64
	MaxMetadataValue = 256
)

// Metadata is an unordered map of UTF-8 keys to UTF-8 values (§3).
type Metadata map[string]string

// Validate checks the invariants of §3: keys/values within length limits.
// Uniqueness is implicit in the map representation.
func (m Metadata) Validate() liberr.Error {
	for k, v := range m {
		if len(k) == 0 || len(k) > MaxMetadataKey {
			return liberr.New(liberr.InvalidArgument.Uint16(),
				fmt.Sprintf("metadata key %q exceeds %d bytes", k, MaxMetadataKey))
		}
		if len(v) > MaxMetadataValue {
			return liberr.New(liberr.InvalidArgument.Uint16(),
				fmt.Sprintf("metadata value for key %q exceeds %d bytes", k, MaxMetadataValue))
		}
	}
	return nil
}

// Encode serializes m as "key<0x02>value<0x01>key<0x02>value<0x01>..." with
// no trailing separator after the last pair. An empty map encodes to zero
// bytes (§4.1). Keys are sorted so encoding is deterministic, which keeps
// S4-style round-trip tests reproducible.
func (m Metadata) Encode() []byte {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(metaPairSep)
		}
		b.WriteString(k)
		b.WriteByte(metaFieldSep)
		b.WriteString(m[k])
	}

	return []byte(b.String())
}

// DecodeMetadata parses a metadata body. Per §4.1: split on 0x01, skip empty
// segments, split each on 0x02; segments without exactly two fields, or with
// an empty key or value, are dropped silently rather than failing the whole
// decode.
func DecodeMetadata(body []byte) Metadata {
	res := make(Metadata)
	if len(body) == 0 {
		return res
	}

	for _, pair := range strings.Split(string(body), string(metaPairSep)) {
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, string(metaFieldSep))
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		res[parts[0]] = parts[1]
	}

	return res
}
