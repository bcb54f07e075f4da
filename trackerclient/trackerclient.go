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

// Package trackerclient issues the §4.4 routing queries over a borrowed
// transport: each operation is exactly one request/response pair that
// resolves to a storage endpoint and (for store queries) a path index.
package trackerclient

import (
	"fmt"
	"time"

	liberr "fdfsclient/fdfserr"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

// storeRespLen is group(16) + ip(15) + port(8) + path-index(1).
const storeRespLen = wire.GroupNameWidth + wire.IPAddressOnWire + 8 + 1

// locateRespLen is group(16) + ip(15) + port(8), shared by fetch and update.
const locateRespLen = wire.GroupNameWidth + wire.IPAddressOnWire + 8

// Location is a resolved storage endpoint plus, for store queries, the
// path index the storage node expects to see echoed back on upload.
type Location struct {
	Group     string
	Endpoint  transport.Endpoint
	PathIndex byte
}

func sendRequest(tr *transport.Transport, timeout time.Duration, cmd wire.Command, body []byte) liberr.Error {
	h := wire.Header{BodyLength: int64(len(body)), Command: cmd}
	if err := tr.WriteAll(h.Encode(), timeout); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return tr.WriteAll(body, timeout)
}

func readResponse(tr *transport.Transport, timeout time.Duration, op string, maxBody int64) ([]byte, liberr.Error) {
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
					fmt.Sprintf("%s: tracker reported transient status %d", op, h.Status), se)
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

func decodeLocation(op string, body []byte, wantLen int) (Location, liberr.Error) {
	if len(body) != wantLen {
		return Location{}, liberr.New(liberr.ProtocolError.Uint16(),
			fmt.Sprintf("%s: expected %d byte response body, got %d", op, wantLen, len(body)))
	}

	group := wire.GetFixedString(body[:wire.GroupNameWidth])
	off := wire.GroupNameWidth

	ip := wire.GetFixedString(body[off : off+wire.IPAddressOnWire])
	off += wire.IPAddressOnWire

	port, perr := wire.GetInt64(body[off : off+8])
	if perr != nil {
		return Location{}, perr
	}
	off += 8

	loc := Location{Group: group, Endpoint: transport.Endpoint{Host: ip, Port: int(port)}}

	if len(body) > off {
		loc.PathIndex = body[off]
	}
	return loc, nil
}

// QueryStoreWithoutGroup asks the tracker to pick any group/storage for a
// new upload (§4.4).
func QueryStoreWithoutGroup(tr *transport.Transport, timeout time.Duration) (Location, liberr.Error) {
	if err := sendRequest(tr, timeout, wire.CmdTrackerQueryStoreWithoutGroup, nil); err != nil {
		return Location{}, err
	}
	body, err := readResponse(tr, timeout, "query-store-without-group", storeRespLen)
	if err != nil {
		return Location{}, err
	}
	return decodeLocation("query-store-without-group", body, storeRespLen)
}

// QueryStoreWithGroup asks the tracker to pick a storage within group for a
// new upload (§4.4).
func QueryStoreWithGroup(tr *transport.Transport, timeout time.Duration, group string) (Location, liberr.Error) {
	body := wire.PutFixedString(group, wire.GroupNameWidth)
	if err := sendRequest(tr, timeout, wire.CmdTrackerQueryStoreWithGroup, body); err != nil {
		return Location{}, err
	}
	resp, err := readResponse(tr, timeout, "query-store-with-group", storeRespLen)
	if err != nil {
		return Location{}, err
	}
	return decodeLocation("query-store-with-group", resp, storeRespLen)
}

// QueryFetch locates a replica to read group/filename from (§4.4). Fetch-class
// failures are the ones the orchestrator is allowed to retry against a
// different replica.
func QueryFetch(tr *transport.Transport, timeout time.Duration, group, filename string) (Location, liberr.Error) {
	return queryByName(tr, timeout, wire.CmdTrackerQueryFetch, "query-fetch", group, filename)
}

// QueryUpdate locates the source replica for a mutation of group/filename
// (§4.4). Unlike fetch, update-class operations do not failover across
// replicas on the caller's behalf.
func QueryUpdate(tr *transport.Transport, timeout time.Duration, group, filename string) (Location, liberr.Error) {
	return queryByName(tr, timeout, wire.CmdTrackerQueryUpdate, "query-update", group, filename)
}

func queryByName(tr *transport.Transport, timeout time.Duration, cmd wire.Command, op, group, filename string) (Location, liberr.Error) {
	body := make([]byte, 0, wire.GroupNameWidth+len(filename))
	body = append(body, wire.PutFixedString(group, wire.GroupNameWidth)...)
	body = append(body, []byte(filename)...)

	if err := sendRequest(tr, timeout, cmd, body); err != nil {
		return Location{}, err
	}
	resp, err := readResponse(tr, timeout, op, locateRespLen)
	if err != nil {
		return Location{}, err
	}
	return decodeLocation(op, resp, locateRespLen)
}
