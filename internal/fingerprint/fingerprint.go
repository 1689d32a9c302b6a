// Package fingerprint computes content fingerprints for publish decisions.
//
// The digest is MD5 hex: for single-part uploads S3 reports the object's MD5
// as its ETag, so a local fingerprint can be compared directly against remote
// metadata without a download.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded MD5 digest of content.
// Identical bytes always produce identical fingerprints.
func Sum(content []byte) string {
	h := md5.Sum(content)
	return hex.EncodeToString(h[:])
}

// MatchesETag reports whether a fingerprint matches an S3 ETag value.
// ETags arrive quoted, and multipart-upload ETags carry a "-<parts>" suffix
// that can never match an MD5 digest; those compare as false.
func MatchesETag(fp, etag string) bool {
	if fp == "" || etag == "" {
		return false
	}
	return fp == strings.Trim(etag, `"`)
}
