package transport_test

import (
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/transport"
)

func listen(t *testing.T) (net.Listener, transport.Endpoint) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ep, eerr := transport.NewEndpoint(l.Addr().String())
	require.Nil(t, eerr)

	return l, ep
}

func TestDialReadWriteRoundTrip(t *testing.T) {
	l, ep := listen(t)
	defer l.Close()

	srvDone := make(chan struct{})
	go func() {
		defer close(srvDone)
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 5)
		_, _ = io.ReadFull(conn, buf)
		_, _ = conn.Write(buf)
	}()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)

	werr := tr.WriteAll([]byte("hello"), time.Second)
	require.Nil(t, werr)

	out := make([]byte, 5)
	rerr := tr.ReadFull(out, time.Second)
	require.Nil(t, rerr)
	assert.Equal(t, "hello", string(out))

	_ = tr.Close(time.Second)
	<-srvDone
}

func TestReadFullShortReadIsTransportError(t *testing.T) {
	l, ep := listen(t)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		conn.Write([]byte("ab"))
		conn.Close()
	}()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)

	out := make([]byte, 5)
	rerr := tr.ReadFull(out, time.Second)
	assert.NotNil(t, rerr)
	assert.True(t, tr.Poisoned())
}

func TestCopyFromCopyToStreaming(t *testing.T) {
	l, ep := listen(t)
	defer l.Close()

	payload := bytes.Repeat([]byte("x"), 10000)

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, len(payload))
		io.ReadFull(conn, buf)
		conn.Write(buf)
	}()

	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)

	cerr := tr.CopyFrom(bytes.NewReader(payload), int64(len(payload)), time.Second, 1024)
	require.Nil(t, cerr)

	var out bytes.Buffer
	derr := tr.CopyTo(&out, int64(len(payload)), time.Second, 1024)
	require.Nil(t, derr)
	assert.Equal(t, payload, out.Bytes())
}

func TestDialConnectTimeout(t *testing.T) {
	// 10.255.255.1 is a non-routable address commonly used to force a connect timeout.
	ep := transport.Endpoint{Host: "10.255.255.1", Port: 1}
	_, err := transport.Dial(ep, 50*time.Millisecond)
	assert.NotNil(t, err)
}
