package client_test

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/client"
	"fdfsclient/config"
	"fdfsclient/fdfserr"
	"fdfsclient/fileid"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

// fakeServer accepts any number of connections and serves any number of
// request frames per connection, handing each decoded (cmd, body) to handle
// and writing back the (status, body) it returns. A CmdQuit frame ends the
// connection, mirroring transport.Close's handshake.
func fakeServer(t *testing.T, handle func(cmd wire.Command, body []byte) (status byte, respBody []byte)) (net.Listener, transport.Endpoint) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, aerr := l.Accept()
			if aerr != nil {
				return
			}
			go serveConn(conn, handle)
		}
	}()

	ep, eerr := transport.NewEndpoint(l.Addr().String())
	require.Nil(t, eerr)
	return l, ep
}

func serveConn(conn net.Conn, handle func(cmd wire.Command, body []byte) (status byte, respBody []byte)) {
	defer conn.Close()

	for {
		hbuf := make([]byte, wire.HeaderSize)
		if _, err := readFull(conn, hbuf); err != nil {
			return
		}
		h, derr := wire.DecodeHeader(hbuf, 1<<24)
		if derr != nil {
			return
		}
		body := make([]byte, h.BodyLength)
		if h.BodyLength > 0 {
			if _, err := readFull(conn, body); err != nil {
				return
			}
		}
		if h.Command == wire.CmdQuit {
			return
		}

		status, respBody := handle(h.Command, body)
		rh := wire.Header{BodyLength: int64(len(respBody)), Command: h.Command, Status: status}
		if _, err := conn.Write(rh.Encode()); err != nil {
			return
		}
		if len(respBody) > 0 {
			if _, err := conn.Write(respBody); err != nil {
				return
			}
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func storeResponse(group string, ep transport.Endpoint, pathIndex byte) []byte {
	b := make([]byte, 0, 40)
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, wire.PutFixedString(ep.Host, wire.IPAddressOnWire)...)
	b = append(b, wire.PutInt64(int64(ep.Port))...)
	b = append(b, pathIndex)
	return b
}

func locateResponse(group string, ep transport.Endpoint) []byte {
	b := make([]byte, 0, 39)
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, wire.PutFixedString(ep.Host, wire.IPAddressOnWire)...)
	b = append(b, wire.PutInt64(int64(ep.Port))...)
	return b
}

func fileResultBody(group, filename string) []byte {
	b := make([]byte, 0, wire.GroupNameWidth+len(filename))
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, []byte(filename)...)
	return b
}

func newTestClient(t *testing.T, trackerEp transport.Endpoint, retryCount int) *client.Client {
	t.Helper()
	cfg := config.Default()
	cfg.TrackerAddrs = []string{trackerEp.String()}
	cfg.MaxConns = 4
	cfg.ConnectTimeout = time.Second
	cfg.NetworkTimeout = 2 * time.Second
	cfg.RetryCount = retryCount

	c, err := client.New(cfg, nil, nil)
	require.Nil(t, err)
	return c
}

func TestUploadThenDownloadRoundTrip(t *testing.T) {
	payload := []byte("hello fdfs")
	var storageEp transport.Endpoint

	storageL, sep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		switch cmd {
		case wire.CmdUploadFile:
			return 0, fileResultBody("group1", "M00/00/00/abc.txt")
		case wire.CmdDownloadFile:
			return 0, payload
		}
		return 0, nil
	})
	defer storageL.Close()
	storageEp = sep

	trackerL, tep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		switch cmd {
		case wire.CmdTrackerQueryStoreWithoutGroup:
			return 0, storeResponse("group1", storageEp, 0)
		case wire.CmdTrackerQueryFetch:
			return 0, locateResponse("group1", storageEp)
		}
		return 0, nil
	})
	defer trackerL.Close()

	c := newTestClient(t, tep, 1)
	defer c.Close()

	ctx := context.Background()
	id, err := c.Upload(ctx, "txt", int64(len(payload)), bytes.NewReader(payload), 0)
	require.Nil(t, err)
	assert.Equal(t, "group1", id.Group)
	assert.Equal(t, "M00/00/00/abc.txt", id.Filename)

	var out bytes.Buffer
	derr := c.Download(ctx, id, 0, 0, &out, 0)
	require.Nil(t, derr)
	assert.Equal(t, payload, out.Bytes())
}

func TestDeleteNotFoundSurfacesImmediately(t *testing.T) {
	var storageEp transport.Endpoint

	storageL, sep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 2, nil // ENOENT
	})
	defer storageL.Close()
	storageEp = sep

	trackerL, tep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 0, locateResponse("group1", storageEp)
	})
	defer trackerL.Close()

	c := newTestClient(t, tep, 2)
	defer c.Close()

	err := c.Delete(context.Background(), mustFileID(t, "group1/M00/gone.jpg"))
	require.NotNil(t, err)
	assert.True(t, err.HasCode(fdfserr.NotFound))
}

func TestFetchFailoverRequeriesTrackerOnTransientStorageStatus(t *testing.T) {
	var goodEp transport.Endpoint
	attempt := 0

	badL, badEp := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 99, nil // unmapped transient status
	})
	defer badL.Close()

	goodL, gep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 0, []byte("payload12")
	})
	defer goodL.Close()
	goodEp = gep

	trackerL, tep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		attempt++
		if attempt == 1 {
			return 0, locateResponse("group1", badEp)
		}
		return 0, locateResponse("group1", goodEp)
	})
	defer trackerL.Close()

	c := newTestClient(t, tep, 1)
	defer c.Close()

	var out bytes.Buffer
	err := c.Download(context.Background(), mustFileID(t, "group1/M00/f.jpg"), 0, 0, &out, 0)
	require.Nil(t, err)
	assert.Equal(t, "payload12", out.String())
	assert.GreaterOrEqual(t, attempt, 2)
}

func TestDownloadCancelledContextReturnsCancelled(t *testing.T) {
	var storageEp transport.Endpoint

	storageL, sep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		time.Sleep(200 * time.Millisecond)
		return 0, []byte("too-late")
	})
	defer storageL.Close()
	storageEp = sep

	trackerL, tep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 0, locateResponse("group1", storageEp)
	})
	defer trackerL.Close()

	c := newTestClient(t, tep, 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := c.Download(ctx, mustFileID(t, "group1/M00/f.jpg"), 0, 0, &out, 0)
	require.NotNil(t, err)
	assert.True(t, err.HasCode(fdfserr.Cancelled))
}

func TestCloseRejectsSubsequentCalls(t *testing.T) {
	trackerL, tep := fakeServer(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 0, nil
	})
	defer trackerL.Close()

	c := newTestClient(t, tep, 0)
	require.NoError(t, c.Close())

	_, err := c.Upload(context.Background(), "txt", 3, bytes.NewReader([]byte("abc")), 0)
	require.NotNil(t, err)
	assert.True(t, err.HasCode(fdfserr.ClientClosed))
}

func mustFileID(t *testing.T, raw string) fileid.FileID {
	t.Helper()
	id, err := fileid.Parse(raw)
	require.Nil(t, err)
	return id
}
