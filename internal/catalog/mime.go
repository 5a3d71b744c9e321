package catalog

import (
	"path"
	"strings"

	"github.com/h2non/filetype"
)

var mimeByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// MimeTypeForPath infers an image MIME type from the file extension.
func MimeTypeForPath(p string) (string, bool) {
	ext := strings.ToLower(path.Ext(p))
	m, ok := mimeByExt[ext]
	return m, ok
}

// DetectMimeType uses the extension when it is known and otherwise sniffs the
// content. The empty string means the data is not a recognised image.
func DetectMimeType(p string, data []byte) string {
	if m, ok := MimeTypeForPath(p); ok {
		return m
	}
	if kind, err := filetype.Match(data); err == nil && filetype.IsImage(data) {
		return kind.MIME.Value
	}
	return ""
}
