package filestorage

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

// Upload categories, used as key prefixes
const (
	CategoryMedia          = "media"
	CategoryDocument       = "document"
	CategoryEventImage     = "event_images"
	CategoryProfilePicture = "profile_pictures"
	CategoryResearchPaper  = "research_papers"
	CategoryChat           = "chat"
)

// Allowed extensions per upload kind
var (
	MediaExtensions          = []string{".jpg", ".jpeg", ".jfif", ".png", ".gif", ".webp", ".mp4", ".mov"}
	DocumentExtensions       = []string{".pdf", ".docx", ".txt"}
	ImageExtensions          = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	ResearchPaperExtensions  = []string{".pdf", ".doc", ".docx"}
	ChatAttachmentExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".docx"}
)

// StoredFile describes a file after it was written to storage
type StoredFile struct {
	Key          string // Storage key, relative to the storage root
	URL          string // Public URL
	OriginalName string
	Ext          string
	Size         int64
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save writes an uploaded file under category and returns where it went
	Save(ctx context.Context, category string, fileHeader *multipart.FileHeader) (*StoredFile, error)

	// Open returns a reader for a previously stored key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored key; missing keys are not an error
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of a key
	URL(key string) string
}

// CheckExtension returns the lower-cased extension of filename when it is in allowed
func CheckExtension(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return ext, nil
		}
	}
	return "", apperrors.Wrap(apperrors.ErrUnsupportedFileType,
		"Unsupported file type. Allowed: "+strings.Join(allowed, ", "))
}

// KeyFromURL strips a known base URL so that stored URLs can be turned back into keys
func KeyFromURL(baseURL, fileURL string) string {
	base := strings.TrimRight(baseURL, "/") + "/"
	return strings.TrimPrefix(fileURL, base)
}
