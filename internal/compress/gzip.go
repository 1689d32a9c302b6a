// Package compress is the optional pre-pass that gzips matching files before
// they reach the publish decider. Compressed files get the configured suffix
// appended to their key, which is how the decider later recovers the
// original media type and infers the Content-Encoding header.
package compress

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/klauspost/compress/gzip"

	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/remote"
)

// Rule configures the pre-pass.
type Rule struct {
	// Suffix is appended to the key of every compressed file, e.g. ".gz".
	Suffix string

	// Patterns select which keys are compressed.
	Patterns []*regexp.Regexp

	// Level is the gzip compression level; zero means gzip.DefaultCompression.
	Level int
}

// CompileRule builds a Rule from raw pattern strings. An invalid pattern is
// a configuration error.
func CompileRule(suffix string, patterns []string, level int) (*Rule, error) {
	if suffix == "" {
		return nil, fmt.Errorf("compress rule: suffix is required")
	}
	r := &Rule{Suffix: suffix, Level: level}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compress rule: invalid pattern %q: %w", p, err)
		}
		r.Patterns = append(r.Patterns, re)
	}
	return r, nil
}

func (r *Rule) matches(key string) bool {
	for _, re := range r.Patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Apply compresses f in place when it matches the rule: payload gzipped, key
// and path suffixed, Content-Encoding pre-set. Files that do not match, have
// no buffered payload, or would grow by compressing are left untouched.
func (r *Rule) Apply(f *publish.File) error {
	if r == nil || f.Payload.Kind != publish.PayloadBytes || !r.matches(f.Key) {
		return nil
	}

	level := r.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return fmt.Errorf("compress rule: level %d: %w", level, err)
	}
	if _, err := w.Write(f.Payload.Bytes); err != nil {
		return fmt.Errorf("compressing %s: %w", f.Key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing %s: %w", f.Key, err)
	}

	if buf.Len() >= len(f.Payload.Bytes) {
		return nil
	}

	f.Payload = publish.BytesPayload(buf.Bytes())
	f.Key += r.Suffix
	f.Path += r.Suffix
	f.SetHeader(remote.HeaderContentEncoding, "gzip")
	return nil
}
