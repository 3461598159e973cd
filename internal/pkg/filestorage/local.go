package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL the root directory is served under
}

// NewLocalStorage creates a new LocalStorage instance.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save saves a file under the category subdirectory with a random name
func (ls *LocalStorage) Save(_ context.Context, category string, fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, category)
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	key := path.Join(category, uniqueFilename)
	logger.Debug().Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved")

	return &StoredFile{
		Key:          key,
		URL:          ls.URL(key),
		OriginalName: fileHeader.Filename,
		Ext:          ext,
		Size:         size,
	}, nil
}

// Open opens a stored file for reading
func (ls *LocalStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	physicalPath, err := ls.resolve(key)
	if err != nil {
		return nil, err
	}
	return os.Open(physicalPath)
}

// Delete removes a file. Deleting a missing file succeeds.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}

	physicalPath, err := ls.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public URL of a key
func (ls *LocalStorage) URL(key string) string {
	if ls.baseURL == "" {
		return path.Join("/uploads", key)
	}
	return ls.baseURL + "/" + key
}

// resolve maps a key to a path under basePath, refusing anything that escapes it
func (ls *LocalStorage) resolve(key string) (string, error) {
	key = KeyFromURL(ls.baseURL, key)
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid file key: %s", key)
	}
	return filepath.Join(ls.basePath, cleaned), nil
}
