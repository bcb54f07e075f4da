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

// Package fileid parses and formats the client-facing File ID: "group/remote_filename".
package fileid

import (
	"strings"

	liberr "fdfsclient/fdfserr"
)

// FileID is a parsed "group/remote_filename" identifier (GLOSSARY).
type FileID struct {
	Group    string
	Filename string
}

// String renders id back into its canonical "group/remote_filename" form.
func (id FileID) String() string {
	return id.Group + "/" + id.Filename
}

// Parse splits raw on the first '/'. Both halves must be non-empty, else
// InvalidArgument (§4.6).
func Parse(raw string) (FileID, liberr.Error) {
	i := strings.IndexByte(raw, '/')
	if i < 0 {
		return FileID{}, liberr.New(liberr.InvalidArgument.Uint16(), "file id missing '/' separator: "+raw)
	}

	group, name := raw[:i], raw[i+1:]
	if group == "" || name == "" {
		return FileID{}, liberr.New(liberr.InvalidArgument.Uint16(), "file id has an empty group or filename: "+raw)
	}

	return FileID{Group: group, Filename: name}, nil
}
