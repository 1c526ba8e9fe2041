package http

import "strings"

const mimeTypeBinary = "application/octet-stream"

// Extension keys carry the leading dot and are lowercase. Read-only after
// init, safe to share across connections.
var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".txt":  "text/plain",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".pdf":  "application/pdf",
}

func MimeTypeByExtension(ext string) string {
	if mimeType, found := mimeTypes[strings.ToLower(ext)]; found {
		return mimeType
	}
	return mimeTypeBinary
}

// IsCompressible reports whether a content type is worth gzip-encoding.
// Binary formats (images, audio, video, pdf) are already compressed.
func IsCompressible(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		contentType == "application/javascript" ||
		contentType == "application/json" ||
		strings.HasSuffix(contentType, "xml")
}
