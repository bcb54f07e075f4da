package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fdfsclient/fdfserr"
	"fdfsclient/wire"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := wire.Header{BodyLength: 42, Command: wire.CmdUploadFile, Status: 0}
	b := h.Encode()
	assert.Len(t, b, wire.HeaderSize)

	got, err := wire.DecodeHeader(b, 0)
	assert.Nil(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHeaderShort(t *testing.T) {
	_, err := wire.DecodeHeader([]byte{1, 2, 3}, 0)
	assert.NotNil(t, err)
	assert.True(t, err.IsCode(fdfserr.ProtocolError))
}

func TestDecodeHeaderExceedsMax(t *testing.T) {
	h := wire.Header{BodyLength: 1000}
	_, err := wire.DecodeHeader(h.Encode(), 10)
	assert.NotNil(t, err)
}

func TestFixedStringRoundTrip(t *testing.T) {
	b := wire.PutFixedString("group1", wire.GroupNameWidth)
	assert.Len(t, b, wire.GroupNameWidth)
	assert.Equal(t, "group1", wire.GetFixedString(b))
}

func TestFixedStringEmptyExtensionIsLegal(t *testing.T) {
	b := wire.PutFixedString("", wire.FileExtWidth)
	assert.Equal(t, "", wire.GetFixedString(b))
}

func TestMetadataEncodeDecodeRoundTrip(t *testing.T) {
	m := wire.Metadata{"a": "1", "b": "2"}
	enc := m.Encode()
	dec := wire.DecodeMetadata(enc)
	assert.Equal(t, m, dec)
}

func TestMetadataEncodeEmptyIsZeroBytes(t *testing.T) {
	assert.Len(t, wire.Metadata{}.Encode(), 0)
}

func TestMetadataDecodeMalformedRecordDropped(t *testing.T) {
	dec := wire.DecodeMetadata([]byte("a\x02\x01"))
	assert.Len(t, dec, 0)
}

func TestMetadataValidateBounds(t *testing.T) {
	longKey := make([]byte, wire.MaxMetadataKey+1)
	m := wire.Metadata{string(longKey): "v"}
	assert.NotNil(t, m.Validate())

	okM := wire.Metadata{"k": "v"}
	assert.Nil(t, okM.Validate())
}
