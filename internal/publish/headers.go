package publish

import (
	"mime"
	"path"
	"strconv"
	"strings"

	"github.com/bianoble/bucketpub/internal/remote"
)

// DefaultACL is the canned ACL attached to uploads unless disabled.
const DefaultACL = "public-read"

// deriveHeaders fills in the headers the store needs for f's upload.
// Precedence is caller-supplied > inferred > default: SetHeader never
// overwrites, so anything upstream stages put on the file survives.
//
// encodings maps a filename suffix left by a compression pre-pass to its
// Content-Encoding value (".gz" → "gzip"). A matching suffix both sets the
// encoding header and is stripped before the media-type lookup, so
// "app.css.gz" is published as gzip-encoded text/css.
func deriveHeaders(f *File, encodings map[string]string, noACL bool) {
	lookupKey := f.Key
	for suffix, encoding := range encodings {
		if suffix != "" && strings.HasSuffix(f.Key, suffix) {
			f.SetHeader(remote.HeaderContentEncoding, encoding)
			lookupKey = strings.TrimSuffix(f.Key, suffix)
			break
		}
	}

	f.SetHeader(remote.HeaderContentType, contentType(lookupKey))
	f.SetHeader(remote.HeaderContentLength, strconv.Itoa(len(f.Payload.Bytes)))

	if !noACL {
		f.SetHeader(remote.HeaderACL, DefaultACL)
	}
}

// contentType resolves a media type from the key's extension, defaulting to
// application/octet-stream. Text-like types get an explicit utf-8 charset if
// the mime table did not already attach one.
func contentType(key string) string {
	mt := mime.TypeByExtension(path.Ext(key))
	if mt == "" {
		return "application/octet-stream"
	}
	if isTextLike(mt) && !strings.Contains(mt, "charset") {
		mt += "; charset=utf-8"
	}
	return mt
}

func isTextLike(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0]) {
	case "application/json", "application/javascript", "application/xml", "image/svg+xml":
		return true
	}
	return false
}
