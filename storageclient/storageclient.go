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

// Package storageclient issues the §4.5 data-plane commands over a borrowed
// transport to the storage endpoint a tracker query resolved. Every command
// that carries a file payload exposes an io.Reader/io.Writer-based variant so
// callers can stream from or to disk without buffering the whole file (§4.5
// streaming contract).
package storageclient

import (
	"fmt"
	"io"
	"time"

	liberr "fdfsclient/fdfserr"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

// DefaultChunkSize is used by streaming copies when the caller does not pick
// one; it is never wire-visible, only the declared total body length is.
const DefaultChunkSize = 64 * 1024

// FileResult is the response to an upload-class command: the group and
// remote filename the storage node assigned (§4.5).
type FileResult struct {
	Group    string
	Filename string
}

// FileInfo is the response to query-file-info (§4.5).
type FileInfo struct {
	Size       int64
	CreateTime int32
	CRC32      uint32
	SourceIP   string
}

func writeHeader(tr *transport.Transport, timeout time.Duration, cmd wire.Command, bodyLen int64) liberr.Error {
	h := wire.Header{BodyLength: bodyLen, Command: cmd}
	return tr.WriteAll(h.Encode(), timeout)
}

func readStatusOnly(tr *transport.Transport, timeout time.Duration, op string, maxBody int64) liberr.Error {
	body, err := readResponseBody(tr, timeout, op, maxBody)
	if err != nil {
		return err
	}
	_ = body
	return nil
}

func readResponseBody(tr *transport.Transport, timeout time.Duration, op string, maxBody int64) ([]byte, liberr.Error) {
	hbuf := make([]byte, wire.HeaderSize)
	if err := tr.ReadFull(hbuf, timeout); err != nil {
		return nil, err
	}

	h, err := wire.DecodeHeader(hbuf, maxBody)
	if err != nil {
		return nil, err
	}

	if h.Status != 0 {
		if se := liberr.FromStatus(op, h.Status); se != nil {
			if liberr.IsTransientStatus(h.Status) {
				return nil, liberr.New(liberr.NoStorageAvailable.Uint16(),
					fmt.Sprintf("%s: storage node reported transient status %d", op, h.Status), se)
			}
			return nil, se
		}
	}

	body := make([]byte, h.BodyLength)
	if h.BodyLength > 0 {
		if err := tr.ReadFull(body, timeout); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func decodeFileResult(op string, body []byte) (FileResult, liberr.Error) {
	if len(body) < wire.GroupNameWidth {
		return FileResult{}, liberr.New(liberr.ProtocolError.Uint16(),
			fmt.Sprintf("%s: response body shorter than group field", op))
	}
	return FileResult{
		Group:    wire.GetFixedString(body[:wire.GroupNameWidth]),
		Filename: string(body[wire.GroupNameWidth:]),
	}, nil
}

func uploadBody(tr *transport.Transport, timeout time.Duration, cmd wire.Command, op string,
	pathIndex byte, fileExt string, size int64, data io.Reader, chunk int) (FileResult, liberr.Error) {

	fixed := make([]byte, 0, 1+8+wire.FileExtWidth)
	fixed = append(fixed, pathIndex)
	fixed = append(fixed, wire.PutInt64(size)...)
	fixed = append(fixed, wire.PutFixedString(fileExt, wire.FileExtWidth)...)

	if err := writeHeader(tr, timeout, cmd, int64(len(fixed))+size); err != nil {
		return FileResult{}, err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return FileResult{}, err
	}
	if err := tr.CopyFrom(data, size, timeout, chunk); err != nil {
		return FileResult{}, err
	}

	body, err := readResponseBody(tr, timeout, op, 0)
	if err != nil {
		return FileResult{}, err
	}
	return decodeFileResult(op, body)
}

// UploadFile uploads data (exactly size bytes) as a plain file (opcode 11).
func UploadFile(tr *transport.Transport, timeout time.Duration, pathIndex byte, fileExt string, size int64, data io.Reader, chunk int) (FileResult, liberr.Error) {
	return uploadBody(tr, timeout, wire.CmdUploadFile, "upload-file", pathIndex, fileExt, size, data, chunk)
}

// UploadAppenderFile uploads data as an appender file (opcode 23), which may
// later accept append/modify/truncate operations.
func UploadAppenderFile(tr *transport.Transport, timeout time.Duration, pathIndex byte, fileExt string, size int64, data io.Reader, chunk int) (FileResult, liberr.Error) {
	return uploadBody(tr, timeout, wire.CmdUploadAppenderFile, "upload-appender-file", pathIndex, fileExt, size, data, chunk)
}

// UploadSlaveFile uploads a slave file co-located with master's group
// (opcode 21): prefix distinguishes the slave from other slaves of the same master.
func UploadSlaveFile(tr *transport.Transport, timeout time.Duration, masterFilename, prefix, fileExt string, size int64, data io.Reader, chunk int) (FileResult, liberr.Error) {
	fixed := make([]byte, 0, 8+8+wire.GroupNameWidth+wire.FileExtWidth+len(masterFilename))
	fixed = append(fixed, wire.PutInt64(int64(len(masterFilename)))...)
	fixed = append(fixed, wire.PutInt64(size)...)
	fixed = append(fixed, wire.PutFixedString(prefix, wire.GroupNameWidth)...)
	fixed = append(fixed, wire.PutFixedString(fileExt, wire.FileExtWidth)...)
	fixed = append(fixed, []byte(masterFilename)...)

	if err := writeHeader(tr, timeout, wire.CmdUploadSlaveFile, int64(len(fixed))+size); err != nil {
		return FileResult{}, err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return FileResult{}, err
	}
	if err := tr.CopyFrom(data, size, timeout, chunk); err != nil {
		return FileResult{}, err
	}

	body, err := readResponseBody(tr, timeout, "upload-slave-file", 0)
	if err != nil {
		return FileResult{}, err
	}
	return decodeFileResult("upload-slave-file", body)
}

// DownloadFile reads length bytes (0 = to end) of group/filename starting at
// offset into w (opcode 14), streaming without buffering the whole file.
func DownloadFile(tr *transport.Transport, timeout time.Duration, group, filename string, offset, length int64, w io.Writer, chunk int) liberr.Error {
	body := make([]byte, 0, 8+8+wire.GroupNameWidth+len(filename))
	body = append(body, wire.PutInt64(offset)...)
	body = append(body, wire.PutInt64(length)...)
	body = append(body, wire.PutFixedString(group, wire.GroupNameWidth)...)
	body = append(body, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdDownloadFile, int64(len(body))); err != nil {
		return err
	}
	if err := tr.WriteAll(body, timeout); err != nil {
		return err
	}

	hbuf := make([]byte, wire.HeaderSize)
	if err := tr.ReadFull(hbuf, timeout); err != nil {
		return err
	}
	h, derr := wire.DecodeHeader(hbuf, 0)
	if derr != nil {
		return derr
	}
	if h.Status != 0 {
		if se := liberr.FromStatus("download-file", h.Status); se != nil {
			if liberr.IsTransientStatus(h.Status) {
				return liberr.New(liberr.NoStorageAvailable.Uint16(),
					fmt.Sprintf("download-file: storage node reported transient status %d", h.Status), se)
			}
			return se
		}
	}

	return tr.CopyTo(w, h.BodyLength, timeout, chunk)
}

// DeleteFile removes group/filename (opcode 12); idempotent-at-effect (§8
// invariant 7): deleting an already-deleted file again yields NotFound, not
// a distinct "already deleted" status.
func DeleteFile(tr *transport.Transport, timeout time.Duration, group, filename string) liberr.Error {
	body := make([]byte, 0, wire.GroupNameWidth+len(filename))
	body = append(body, wire.PutFixedString(group, wire.GroupNameWidth)...)
	body = append(body, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdDeleteFile, int64(len(body))); err != nil {
		return err
	}
	if err := tr.WriteAll(body, timeout); err != nil {
		return err
	}
	return readStatusOnly(tr, timeout, "delete-file", 0)
}

// AppendFile appends dataSize bytes of data to the appender file filename
// (opcode 24, no group field: the storage node already knows it from the
// path-embedded group prefix conventions of filename).
func AppendFile(tr *transport.Transport, timeout time.Duration, filename string, dataSize int64, data io.Reader, chunk int) liberr.Error {
	fixed := make([]byte, 0, 16+len(filename))
	fixed = append(fixed, wire.PutInt64(int64(len(filename)))...)
	fixed = append(fixed, wire.PutInt64(dataSize)...)
	fixed = append(fixed, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdAppendFile, int64(len(fixed))+dataSize); err != nil {
		return err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return err
	}
	if err := tr.CopyFrom(data, dataSize, timeout, chunk); err != nil {
		return err
	}
	return readStatusOnly(tr, timeout, "append-file", 0)
}

// ModifyFile overwrites dataSize bytes of the appender file filename starting
// at offset (opcode 34).
func ModifyFile(tr *transport.Transport, timeout time.Duration, filename string, offset, dataSize int64, data io.Reader, chunk int) liberr.Error {
	fixed := make([]byte, 0, 24+len(filename))
	fixed = append(fixed, wire.PutInt64(offset)...)
	fixed = append(fixed, wire.PutInt64(int64(len(filename)))...)
	fixed = append(fixed, wire.PutInt64(dataSize)...)
	fixed = append(fixed, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdModifyFile, int64(len(fixed))+dataSize); err != nil {
		return err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return err
	}
	if err := tr.CopyFrom(data, dataSize, timeout, chunk); err != nil {
		return err
	}
	return readStatusOnly(tr, timeout, "modify-file", 0)
}

// TruncateFile shrinks or extends the appender file filename to targetSize
// (opcode 36).
func TruncateFile(tr *transport.Transport, timeout time.Duration, filename string, targetSize int64) liberr.Error {
	fixed := make([]byte, 0, 16+len(filename))
	fixed = append(fixed, wire.PutInt64(int64(len(filename)))...)
	fixed = append(fixed, wire.PutInt64(targetSize)...)
	fixed = append(fixed, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdTruncateFile, int64(len(fixed))); err != nil {
		return err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return err
	}
	return readStatusOnly(tr, timeout, "truncate-file", 0)
}

// SetMetadata applies md to group/filename under the given flag
// (wire.MetadataFlagOverwrite or wire.MetadataFlagMerge), opcode 13.
func SetMetadata(tr *transport.Transport, timeout time.Duration, group, filename string, flag byte, md wire.Metadata) liberr.Error {
	if err := md.Validate(); err != nil {
		return err
	}
	enc := md.Encode()

	fixed := make([]byte, 0, 16+16+1+wire.GroupNameWidth+len(filename))
	fixed = append(fixed, wire.PutInt64(int64(len(filename)))...)
	fixed = append(fixed, wire.PutInt64(int64(len(enc)))...)
	fixed = append(fixed, flag)
	fixed = append(fixed, wire.PutFixedString(group, wire.GroupNameWidth)...)
	fixed = append(fixed, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdSetMetadata, int64(len(fixed))+int64(len(enc))); err != nil {
		return err
	}
	if err := tr.WriteAll(fixed, timeout); err != nil {
		return err
	}
	if len(enc) > 0 {
		if err := tr.WriteAll(enc, timeout); err != nil {
			return err
		}
	}
	return readStatusOnly(tr, timeout, "set-metadata", 0)
}

// GetMetadata retrieves the metadata map attached to group/filename (opcode 15).
func GetMetadata(tr *transport.Transport, timeout time.Duration, group, filename string) (wire.Metadata, liberr.Error) {
	body := make([]byte, 0, wire.GroupNameWidth+len(filename))
	body = append(body, wire.PutFixedString(group, wire.GroupNameWidth)...)
	body = append(body, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdGetMetadata, int64(len(body))); err != nil {
		return nil, err
	}
	if err := tr.WriteAll(body, timeout); err != nil {
		return nil, err
	}

	resp, err := readResponseBody(tr, timeout, "get-metadata", 0)
	if err != nil {
		return nil, err
	}
	return wire.DecodeMetadata(resp), nil
}

// queryFileInfoRespLen is size(8) + create-time(4) + crc32(4) + source-ip(16).
const queryFileInfoRespLen = 8 + 4 + 4 + wire.IPAddressWidth

// QueryFileInfo retrieves size/create-time/crc32/source-ip for group/filename
// (opcode 22).
func QueryFileInfo(tr *transport.Transport, timeout time.Duration, group, filename string) (FileInfo, liberr.Error) {
	body := make([]byte, 0, wire.GroupNameWidth+len(filename))
	body = append(body, wire.PutFixedString(group, wire.GroupNameWidth)...)
	body = append(body, []byte(filename)...)

	if err := writeHeader(tr, timeout, wire.CmdQueryFileInfo, int64(len(body))); err != nil {
		return FileInfo{}, err
	}
	if err := tr.WriteAll(body, timeout); err != nil {
		return FileInfo{}, err
	}

	resp, err := readResponseBody(tr, timeout, "query-file-info", queryFileInfoRespLen)
	if err != nil {
		return FileInfo{}, err
	}
	if len(resp) != queryFileInfoRespLen {
		return FileInfo{}, liberr.New(liberr.ProtocolError.Uint16(),
			fmt.Sprintf("query-file-info: expected %d byte response body, got %d", queryFileInfoRespLen, len(resp)))
	}

	size, serr := wire.GetInt64(resp[0:8])
	if serr != nil {
		return FileInfo{}, serr
	}
	ctime, cerr := wire.GetInt32(resp[8:12])
	if cerr != nil {
		return FileInfo{}, cerr
	}
	crc, crerr := wire.GetUint32(resp[12:16])
	if crerr != nil {
		return FileInfo{}, crerr
	}
	ip := wire.GetFixedString(resp[16 : 16+wire.IPAddressWidth])

	return FileInfo{Size: size, CreateTime: ctime, CRC32: crc, SourceIP: ip}, nil
}
