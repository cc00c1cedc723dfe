package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"path/filepath"
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// Content types reported for supported résumé formats.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Extension returns the lower-cased file extension without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// NewResumeMeta describes an uploaded file. An empty or generic content
// type is replaced by the one implied by the extension.
func NewResumeMeta(filename, contentType string, size int64) *types.ResumeMeta {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	} else {
		contentType = ""
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypes[Extension(filename)]
	}
	return &types.ResumeMeta{
		Name: filepath.Base(filename),
		Type: contentType,
		Size: size,
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
