package storage

import (
	"context"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_roundTrip(t *testing.T) {
	ctx := context.Background()
	service := New()
	baseDir := t.TempDir()
	assetURL := path.Join(baseDir, "note.txt")

	uploadOutput := &UploadOutput{}
	err := service.Upload(ctx, &UploadInput{
		Assets: []*Asset{{URL: assetURL, Data: []byte("hello storage")}},
	}, uploadOutput)
	assert.Nil(t, err)
	if assert.Equal(t, 1, len(uploadOutput.Assets)) {
		assert.Equal(t, "note.txt", uploadOutput.Assets[0].Name)
		assert.EqualValues(t, len("hello storage"), uploadOutput.Assets[0].Size)
	}

	listOutput := &ListOutput{}
	err = service.List(ctx, &ListInput{URL: baseDir, Recursive: true}, listOutput)
	assert.Nil(t, err)
	var names []string
	for _, asset := range listOutput.Assets {
		names = append(names, asset.Name)
	}
	assert.Contains(t, names, "note.txt")

	downloadOutput := &DownloadOutput{}
	err = service.Download(ctx, &DownloadInput{URLs: []string{assetURL}}, downloadOutput)
	assert.Nil(t, err)
	if assert.Equal(t, 1, len(downloadOutput.Assets)) {
		assert.Equal(t, "hello storage", string(downloadOutput.Assets[0].Data))
	}
}

func TestService_validation(t *testing.T) {
	ctx := context.Background()
	service := New()

	assert.NotNil(t, service.List(ctx, &ListInput{}, &ListOutput{}))
	assert.NotNil(t, service.Download(ctx, &DownloadInput{}, &DownloadOutput{}))
	assert.NotNil(t, service.Upload(ctx, &UploadInput{}, &UploadOutput{}))
	assert.NotNil(t, service.Download(ctx, &DownloadInput{URLs: []string{t.TempDir()}}, &DownloadOutput{}))

	_, err := service.Method("unknown")
	assert.NotNil(t, err)
}
