package filestorage

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

// fileHeader builds a multipart.FileHeader the way gin hands it to handlers
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	t.Cleanup(func() { _ = req.MultipartForm.RemoveAll() })

	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storage, err := NewLocalStorage(dir, "http://localhost:8000/uploads/")
	require.NoError(t, err)

	stored, err := storage.Save(ctx, CategoryResearchPaper, fileHeader(t, "Thesis.PDF", []byte("%PDF-1.4 body")))
	require.NoError(t, err)

	assert.Equal(t, ".pdf", stored.Ext)
	assert.Equal(t, "Thesis.PDF", stored.OriginalName)
	assert.Equal(t, int64(len("%PDF-1.4 body")), stored.Size)
	assert.Equal(t, "http://localhost:8000/uploads/"+stored.Key, stored.URL)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(stored.Key)))

	t.Run("open by key", func(t *testing.T) {
		rc, err := storage.Open(ctx, stored.Key)
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 body", string(data))
	})

	t.Run("open by url", func(t *testing.T) {
		rc, err := storage.Open(ctx, stored.URL)
		require.NoError(t, err)
		rc.Close()
	})

	require.NoError(t, storage.Delete(ctx, stored.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is not an error
	assert.NoError(t, storage.Delete(ctx, stored.Key))
	assert.NoError(t, storage.Delete(ctx, ""))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"../secret.txt", "media/../../etc/passwd", "."} {
		_, err := storage.Open(context.Background(), key)
		assert.Error(t, err, key)
	}
	assert.Equal(t, "/uploads/media/a.png", storage.URL("media/a.png"))
}

func TestLocalStorage_SaveNilFile(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = storage.Save(context.Background(), CategoryMedia, nil)
	assert.Error(t, err)
}

func TestCheckExtension(t *testing.T) {
	ext, err := CheckExtension("photo.JPEG", MediaExtensions)
	require.NoError(t, err)
	assert.Equal(t, ".jpeg", ext)

	_, err = CheckExtension("script.exe", DocumentExtensions)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)

	_, err = CheckExtension("noext", ChatAttachmentExtensions)
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "chat/x.png", KeyFromURL("https://cdn.example.com/", "https://cdn.example.com/chat/x.png"))
	assert.Equal(t, "chat/x.png", KeyFromURL("https://cdn.example.com", "chat/x.png"))
}
