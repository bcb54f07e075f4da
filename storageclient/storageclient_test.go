package storageclient_test

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/storageclient"
	"fdfsclient/transport"
	"fdfsclient/wire"
)

type recordedRequest struct {
	cmd  wire.Command
	body []byte
}

func fakeStorage(t *testing.T, respond func(req recordedRequest) (status byte, respBody []byte)) (net.Listener, transport.Endpoint) {
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

		status, respBody := respond(recordedRequest{cmd: h.Command, body: body})
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

func dial(t *testing.T, ep transport.Endpoint) *transport.Transport {
	t.Helper()
	tr, err := transport.Dial(ep, time.Second)
	require.Nil(t, err)
	return tr
}

func buildFileResultBody(group, filename string) []byte {
	b := make([]byte, 0, wire.GroupNameWidth+len(filename))
	b = append(b, wire.PutFixedString(group, wire.GroupNameWidth)...)
	b = append(b, []byte(filename)...)
	return b
}

func TestUploadFile(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdUploadFile, req.cmd)
		assert.Equal(t, byte(2), req.body[0])
		size, _ := wire.GetInt64(req.body[1:9])
		assert.Equal(t, int64(5), size)
		assert.Equal(t, "txt", wire.GetFixedString(req.body[9:9+wire.FileExtWidth]))
		assert.Equal(t, "Hello", string(req.body[9+wire.FileExtWidth:]))
		return 0, buildFileResultBody("group1", "M00/00/00/abc.txt")
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	res, err := storageclient.UploadFile(tr, time.Second, 2, "txt", 5, bytes.NewReader([]byte("Hello")), 0)
	require.Nil(t, err)
	assert.Equal(t, "group1", res.Group)
	assert.Equal(t, "M00/00/00/abc.txt", res.Filename)
}

func TestDownloadFileStreams(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 5000)
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdDownloadFile, req.cmd)
		return 0, payload
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	var out bytes.Buffer
	err := storageclient.DownloadFile(tr, time.Second, "group1", "M00/foo.jpg", 0, 0, &out, 512)
	require.Nil(t, err)
	assert.Equal(t, payload, out.Bytes())
}

func TestDeleteFile(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdDeleteFile, req.cmd)
		return 0, nil
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	err := storageclient.DeleteFile(tr, time.Second, "group1", "M00/foo.jpg")
	require.Nil(t, err)
}

func TestDeleteFileNotFoundStatus(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		return 2, nil
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	err := storageclient.DeleteFile(tr, time.Second, "group1", "gone.jpg")
	require.NotNil(t, err)
}

func TestSetMetadataEncodesRequestBody(t *testing.T) {
	var decoded wire.Metadata

	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdSetMetadata, req.cmd)
		fixedLen := 8 + 8 + 1 + wire.GroupNameWidth + len("f.jpg")
		decoded = wire.DecodeMetadata(req.body[fixedLen:])
		return 0, nil
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	md := wire.Metadata{"a": "1", "b": "2"}
	err := storageclient.SetMetadata(tr, time.Second, "group1", "f.jpg", wire.MetadataFlagOverwrite, md)
	require.Nil(t, err)
	assert.Equal(t, md, decoded)
}

func TestGetMetadata(t *testing.T) {
	md := wire.Metadata{"a": "1", "b": "2"}

	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdGetMetadata, req.cmd)
		return 0, md.Encode()
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	got, err := storageclient.GetMetadata(tr, time.Second, "group1", "f.jpg")
	require.Nil(t, err)
	assert.Equal(t, md, got)
}

func TestQueryFileInfo(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdQueryFileInfo, req.cmd)
		b := make([]byte, 0, 24)
		b = append(b, wire.PutInt64(1234)...)
		b = append(b, wire.PutInt32(999)...)
		b = append(b, wire.PutUint32(42)...)
		b = append(b, wire.PutFixedString("127.0.0.1", 16)...)
		return 0, b
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	info, err := storageclient.QueryFileInfo(tr, time.Second, "group1", "f.jpg")
	require.Nil(t, err)
	assert.Equal(t, int64(1234), info.Size)
	assert.Equal(t, int32(999), info.CreateTime)
	assert.Equal(t, uint32(42), info.CRC32)
	assert.Equal(t, "127.0.0.1", info.SourceIP)
}

func TestTruncateFile(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdTruncateFile, req.cmd)
		fnSize, _ := wire.GetInt64(req.body[0:8])
		target, _ := wire.GetInt64(req.body[8:16])
		assert.Equal(t, int64(len("f.jpg")), fnSize)
		assert.Equal(t, int64(3), target)
		return 0, nil
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	err := storageclient.TruncateFile(tr, time.Second, "f.jpg", 3)
	require.Nil(t, err)
}

func TestAppendFile(t *testing.T) {
	l, ep := fakeStorage(t, func(req recordedRequest) (byte, []byte) {
		assert.Equal(t, wire.CmdAppendFile, req.cmd)
		return 0, nil
	})
	defer l.Close()

	tr := dial(t, ep)
	defer tr.Close(time.Second)

	err := storageclient.AppendFile(tr, time.Second, "f.jpg", 3, bytes.NewReader([]byte("abc")), 0)
	require.Nil(t, err)
}
