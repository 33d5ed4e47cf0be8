package skybrief

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// DocumentUpload represents a document destined for a search index.
// At least one of Path or Reader must be provided.
type DocumentUpload struct {
	Path     string
	Reader   io.Reader
	Filename string
	MimeType string

	// Optional validation; when set to >0, paths larger than this are rejected.
	MaxBytes int64
}

// filename returns the effective filename.
func (d DocumentUpload) filename() string {
	if d.Filename != "" {
		return d.Filename
	}
	if d.Path != "" {
		return filepath.Base(d.Path)
	}
	return "document"
}

// mimeType returns the mime type or guesses from the filename.
func (d DocumentUpload) mimeType() string {
	if d.MimeType != "" {
		return d.MimeType
	}
	if typ := mime.TypeByExtension(filepath.Ext(d.filename())); typ != "" {
		return typ
	}
	return "application/octet-stream"
}

// open returns an io.ReadCloser for the document contents.
func (d DocumentUpload) open() (io.ReadCloser, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	if d.Reader != nil {
		if rc, ok := d.Reader.(io.ReadCloser); ok {
			return rc, nil
		}
		return io.NopCloser(d.Reader), nil
	}

	// Open first to avoid TOCTOU race between Stat and Open
	file, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", d.Path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat document %s: %w", d.Path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("document upload requires a file, got directory: %s", d.Path)
	}
	if info.Size() == 0 {
		file.Close()
		return nil, fmt.Errorf("document %s is empty", d.Path)
	}
	if d.MaxBytes > 0 && info.Size() > d.MaxBytes {
		file.Close()
		return nil, fmt.Errorf("document %s exceeds max size of %d bytes", d.Path, d.MaxBytes)
	}

	return file, nil
}

func (d DocumentUpload) validate() error {
	switch {
	case d.Reader != nil:
		return nil
	case d.Path != "":
		return nil
	default:
		return fmt.Errorf("document upload requires Path or Reader")
	}
}
