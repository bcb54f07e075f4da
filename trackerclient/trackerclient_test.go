package trackerclient_test

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/trackerclient"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

// fakeTracker accepts one connection, reads one request frame, and replies
// with a canned response built by the caller.
func fakeTracker(t *testing.T, respond func(cmd wire.Command, body []byte) (status byte, respBody []byte)) (net.Listener, transport.Endpoint) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		hbuf := make([]byte, wire.HeaderSize)
		if _, err := readFull(conn, hbuf); err != nil {
			return
		}
		h, derr := wire.DecodeHeader(hbuf, 1<<20)
		if derr != nil {
			return
		}
		body := make([]byte, h.BodyLength)
		if h.BodyLength > 0 {
			if _, err := readFull(conn, body); err != nil {
				return
			}
		}

		status, respBody := respond(h.Command, body)
		rh := wire.Header{BodyLength: int64(len(respBody)), Command: h.Command, Status: status}
		conn.Write(rh.Encode())
		if len(respBody) > 0 {
			conn.Write(respBody)
		}
	}()

	ep, eerr := transport.NewEndpoint(l.Addr().String())
	require.Nil(t, eerr)
	return l, ep
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

func buildStoreResponse(group, ip string, port int64, pathIndex byte) []byte {
	b := make([]byte, 0, 40)
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, wire.PutFixedString(ip, wire.IPAddressOnWire)...)
	b = append(b, wire.PutInt64(port)...)
	b = append(b, pathIndex)
	return b
}

func buildLocateResponse(group, ip string, port int64) []byte {
	b := make([]byte, 0, 39)
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, wire.PutFixedString(ip, wire.IPAddressOnWire)...)
	b = append(b, wire.PutInt64(port)...)
	return b
}

func TestQueryStoreWithoutGroup(t *testing.T) {
	l, ep := fakeTracker(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		assert.Equal(t, wire.CmdTrackerQueryStoreWithoutGroup, cmd)
		assert.Len(t, body, 0)
		return 0, buildStoreResponse("group1", "127.0.0.1", 23000, 3)
	})
	defer l.Close()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	defer tr.Close(time.Second)

	loc, qerr := trackerclient.QueryStoreWithoutGroup(tr, time.Second)
	require.Nil(t, qerr)
	assert.Equal(t, "group1", loc.Group)
	assert.Equal(t, 23000, loc.Endpoint.Port)
	assert.Equal(t, byte(3), loc.PathIndex)
}

func TestQueryStoreWithGroup(t *testing.T) {
	l, ep := fakeTracker(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		assert.Equal(t, wire.CmdTrackerQueryStoreWithGroup, cmd)
		assert.Equal(t, "group9", wire.GetFixedString(body))
		return 0, buildStoreResponse("group9", "10.0.0.5", 23000, 1)
	})
	defer l.Close()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	defer tr.Close(time.Second)

	loc, qerr := trackerclient.QueryStoreWithGroup(tr, time.Second, "group9")
	require.Nil(t, qerr)
	assert.Equal(t, "group9", loc.Group)
	assert.Equal(t, "10.0.0.5", loc.Endpoint.Host)
}

func TestQueryFetch(t *testing.T) {
	l, ep := fakeTracker(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		assert.Equal(t, wire.CmdTrackerQueryFetch, cmd)
		return 0, buildLocateResponse("group1", "127.0.0.1", 23000)
	})
	defer l.Close()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	defer tr.Close(time.Second)

	loc, qerr := trackerclient.QueryFetch(tr, time.Second, "group1", "M00/foo.jpg")
	require.Nil(t, qerr)
	assert.Equal(t, "group1", loc.Group)
	assert.Equal(t, 23000, loc.Endpoint.Port)
}

func TestQueryFetchNotFoundStatus(t *testing.T) {
	l, ep := fakeTracker(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 2, nil
	})
	defer l.Close()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	defer tr.Close(time.Second)

	_, qerr := trackerclient.QueryFetch(tr, time.Second, "group1", "missing.jpg")
	require.NotNil(t, qerr)
}

func TestQueryUpdateMalformedResponse(t *testing.T) {
	l, ep := fakeTracker(t, func(cmd wire.Command, body []byte) (byte, []byte) {
		return 0, []byte("short")
	})
	defer l.Close()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	defer tr.Close(time.Second)

	_, qerr := trackerclient.QueryUpdate(tr, time.Second, "group1", "f.jpg")
	require.NotNil(t, qerr)
}
