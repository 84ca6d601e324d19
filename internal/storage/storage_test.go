package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart header the way gin hands it to handlers.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestNormalizeFilename(t *testing.T) {
	now := time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)

	name := normalizeFilename("Cartaz Recepção.PNG", now)
	assert.True(t, strings.HasPrefix(name, "cartaz-recepcao_20250210_090000_"), name)
	assert.True(t, strings.HasSuffix(name, ".png"), name)

	assert.True(t, strings.HasPrefix(normalizeFilename("!!!.jpg", now), "image_"))
	assert.NotEqual(t, normalizeFilename("a.jpg", now), normalizeFilename("a.jpg", now))
}

func TestContentType(t *testing.T) {
	ct, ok := ContentType("banner.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	_, ok = ContentType("clip.mp4")
	assert.False(t, ok)
}

func TestLocalStorage_SaveImage(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(dir, "/uploads/")

	url, err := ls.SaveImage(context.Background(), fileHeader(t, "banner.png", []byte("png-bytes")))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/banner_"), url)

	saved, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), saved)
}

func TestLocalStorage_RejectsNonImages(t *testing.T) {
	ls := NewLocalStorage(t.TempDir(), "/uploads")

	_, err := ls.SaveImage(context.Background(), fileHeader(t, "notes.pdf", []byte("%PDF")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
