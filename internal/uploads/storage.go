// Package uploads stores progress and reference photos on local disk and
// serves them back under a public URL prefix.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge indicates an upload over the configured size limit.
	ErrTooLarge = errors.New("file exceeds the upload size limit")
	// ErrUnsupportedType indicates a content type outside the allow list.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// extensions maps accepted content types to the stored file extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Storage writes uploads to a directory and maps them to public URLs.
type Storage struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewStorage prepares the upload directory.
func NewStorage(dir, baseURL string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: create dir: %w", err)
	}
	return &Storage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), maxBytes: maxBytes}, nil
}

// Dir returns the storage directory, for mounting the static file server.
func (s *Storage) Dir() string { return s.dir }

// Stored describes a persisted upload.
type Stored struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// Save sniffs the content type, enforces the size limit, and writes the file
// under a random name so uploads can never collide or traverse paths.
func (s *Storage) Save(r io.Reader, contentType string) (Stored, error) {
	// Sniff from content, not the client header.
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Stored{}, fmt.Errorf("uploads: read: %w", err)
	}
	head = head[:n]

	mime := sniff(head, contentType)
	ext, ok := extensions[mime]
	if !ok {
		return Stored{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, fmt.Errorf("uploads: create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), io.LimitReader(r, s.maxBytes)))
	if err != nil {
		os.Remove(path)
		return Stored{}, fmt.Errorf("uploads: write file: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return Stored{}, ErrTooLarge
	}

	return Stored{
		Name:      name,
		URL:       s.baseURL + "/" + name,
		SizeBytes: written,
		MimeType:  mime,
	}, nil
}

func sniff(head []byte, fallback string) string {
	switch {
	case len(head) >= 3 && head[0] == 0xFF && head[1] == 0xD8 && head[2] == 0xFF:
		return "image/jpeg"
	case len(head) >= 8 && string(head[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return "image/webp"
	default:
		return fallback
	}
}
