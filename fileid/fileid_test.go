package fileid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdfsclient/fileid"
)

func TestParseValid(t *testing.T) {
	id, err := fileid.Parse("group1/M00/00/00/abc.jpg")
	require.Nil(t, err)
	assert.Equal(t, "group1", id.Group)
	assert.Equal(t, "M00/00/00/abc.jpg", id.Filename)
}

func TestParseNoSeparator(t *testing.T) {
	_, err := fileid.Parse("group1")
	assert.NotNil(t, err)
}

func TestParseEmptyGroupOrName(t *testing.T) {
	_, err := fileid.Parse("/name")
	assert.NotNil(t, err)

	_, err = fileid.Parse("group1/")
	assert.NotNil(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	id, err := fileid.Parse("group1/foo/bar.jpg")
	require.Nil(t, err)
	assert.Equal(t, "group1/foo/bar.jpg", id.String())
}
