package fdfserr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fdfsclient/fdfserr"
)

func TestCodeErrorTaxonomy(t *testing.T) {
	err := fdfserr.NotFound.Error()
	assert.True(t, err.IsCode(fdfserr.NotFound))
	assert.Equal(t, "file not found", err.StringError())
	assert.Equal(t, fdfserr.NotFound.Uint16(), err.Code())
}

func TestErrorHierarchy(t *testing.T) {
	root := fdfserr.Transport.Error()
	wrapped := fdfserr.New(fdfserr.ServerError.Uint16(), "upload failed", root)

	assert.True(t, wrapped.HasCode(fdfserr.Transport))
	assert.True(t, wrapped.HasCode(fdfserr.ServerError))
	assert.False(t, wrapped.IsCode(fdfserr.Transport))
	assert.True(t, wrapped.HasParent())
}

func TestIfErrorNilWhenNoParent(t *testing.T) {
	assert.Nil(t, fdfserr.IfError(fdfserr.Transport.Uint16(), "msg"))
	assert.NotNil(t, fdfserr.IfError(fdfserr.Transport.Uint16(), "msg", assertErr{}))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestFromStatus(t *testing.T) {
	assert.Nil(t, fdfserr.FromStatus("upload", fdfserr.StatusOK))

	notFound := fdfserr.FromStatus("download", fdfserr.StatusENOENT)
	assert.True(t, notFound.IsCode(fdfserr.NotFound))

	exists := fdfserr.FromStatus("upload", fdfserr.StatusEExist)
	assert.True(t, exists.IsCode(fdfserr.AlreadyExists))

	full := fdfserr.FromStatus("upload", fdfserr.StatusENoSpace)
	assert.True(t, full.IsCode(fdfserr.InsufficientSpace))

	other := fdfserr.FromStatus("upload", 17)
	assert.True(t, other.IsCode(fdfserr.ServerError))
}

func TestIsTransientStatus(t *testing.T) {
	assert.False(t, fdfserr.IsTransientStatus(fdfserr.StatusOK))
	assert.False(t, fdfserr.IsTransientStatus(fdfserr.StatusENOENT))
	assert.False(t, fdfserr.IsTransientStatus(fdfserr.StatusEExist))
	assert.False(t, fdfserr.IsTransientStatus(fdfserr.StatusENoSpace))
	assert.True(t, fdfserr.IsTransientStatus(99))
}

func TestHelpers(t *testing.T) {
	nf := fdfserr.NotFound.Error()
	assert.True(t, fdfserr.IsNotFound(nf))
	assert.False(t, fdfserr.IsCancelled(nf))

	cancelled := fdfserr.Cancelled.Error()
	assert.True(t, fdfserr.IsCancelled(cancelled))

	closed := fdfserr.ClientClosed.Error()
	assert.True(t, fdfserr.IsClientClosed(closed))
}
