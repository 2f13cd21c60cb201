package llm

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// SniffImageMIME detects the image type from magic bytes.
// Anything that is not recognized as an image is sent as JPEG.
func SniffImageMIME(b []byte) string {
	if len(b) == 0 {
		return "image/jpeg"
	}
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}

// DataURL encodes an image as a data: URI.
func DataURL(image []byte) string {
	return "data:" + SniffImageMIME(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
}
