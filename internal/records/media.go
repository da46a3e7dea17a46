package records

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// MediaFile is an uploaded audio or video recording. The payload is not
// inspected locally; format validation is left to the transcription provider.
type MediaFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (m MediaFile) Size() int { return len(m.Data) }

// ReadMediaFile drains r into a MediaFile, guessing the content type from the
// file extension when none is given.
func ReadMediaFile(name, contentType string, r io.Reader) (MediaFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return MediaFile{}, fmt.Errorf("read media %s: %w", name, err)
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return MediaFile{Name: filepath.Base(name), ContentType: contentType, Data: data}, nil
}
