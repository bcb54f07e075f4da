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

// Package wire implements the binary, fixed-width, big-endian wire format
// shared by trackers and storages: the frame header, fixed-width string
// fields, metadata records and the integer encodings used in request and
// response bodies.
package wire

// Command is the one-byte opcode carried in byte 8 of every frame header.
type Command byte

// Opcodes. Tracker opcodes are in the 100s; storage data-plane opcodes
// match the numbers tabulated in the storage client's command table.
const (
	CmdQuit Command = 82

	CmdTrackerQueryStoreWithoutGroup Command = 101
	CmdTrackerQueryStoreWithGroup    Command = 104
	CmdTrackerQueryFetch             Command = 102
	CmdTrackerQueryUpdate            Command = 103

	CmdUploadFile         Command = 11
	CmdDeleteFile         Command = 12
	CmdSetMetadata        Command = 13
	CmdDownloadFile       Command = 14
	CmdGetMetadata        Command = 15
	CmdUploadSlaveFile    Command = 21
	CmdQueryFileInfo      Command = 22
	CmdUploadAppenderFile Command = 23
	CmdAppendFile         Command = 24
	CmdModifyFile         Command = 34
	CmdTruncateFile       Command = 36
)

// String renders a human-readable opcode name for logging.
func (c Command) String() string {
	switch c {
	case CmdQuit:
		return "quit"
	case CmdTrackerQueryStoreWithoutGroup:
		return "tracker-query-store-without-group"
	case CmdTrackerQueryStoreWithGroup:
		return "tracker-query-store-with-group"
	case CmdTrackerQueryFetch:
		return "tracker-query-fetch"
	case CmdTrackerQueryUpdate:
		return "tracker-query-update"
	case CmdUploadFile:
		return "upload-file"
	case CmdDeleteFile:
		return "delete-file"
	case CmdSetMetadata:
		return "set-metadata"
	case CmdDownloadFile:
		return "download-file"
	case CmdGetMetadata:
		return "get-metadata"
	case CmdUploadSlaveFile:
		return "upload-slave-file"
	case CmdQueryFileInfo:
		return "query-file-info"
	case CmdUploadAppenderFile:
		return "upload-appender-file"
	case CmdAppendFile:
		return "append-file"
	case CmdModifyFile:
		return "modify-file"
	case CmdTruncateFile:
		return "truncate-file"
	}
	return "unknown"
}

// Metadata operation flag bytes (§4.1).
const (
	MetadataFlagOverwrite byte = 'O'
	MetadataFlagMerge     byte = 'M'
)
