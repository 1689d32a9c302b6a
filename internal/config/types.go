package config

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the bucketpub.yaml configuration file.
type Config struct {
	Version int `yaml:"version"`

	// Bucket is the target bucket name. Required.
	Bucket string `yaml:"bucket"`

	// Region and Endpoint configure the store client. Endpoint is for
	// S3-compatible services and may be empty.
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`

	// Source is the local directory to publish.
	Source string `yaml:"source"`

	// Prefix scopes all keys: prepended on upload, and reconciliation only
	// ever lists or deletes under it.
	Prefix string `yaml:"prefix,omitempty"`

	// CacheFile is the remote-state cache location; empty means a default
	// derived from the bucket name.
	CacheFile string `yaml:"cache_file,omitempty"`

	// FlushEvery is the mutation count between opportunistic cache flushes;
	// zero means the built-in default.
	FlushEvery int `yaml:"flush_every,omitempty"`

	// NoACL suppresses the default public-read ACL header on uploads.
	NoACL bool `yaml:"no_acl,omitempty"`

	// Headers attach extra publish headers to keys matching a pattern.
	Headers []HeaderRule `yaml:"headers,omitempty"`

	// Gzip configures the compression pre-pass; nil disables it.
	Gzip *GzipRule `yaml:"gzip,omitempty"`

	// Encodings maps a compressed-filename suffix to its Content-Encoding
	// value. Defaults to {gzip.suffix: "gzip"} when the pre-pass is on.
	Encodings map[string]string `yaml:"encodings,omitempty"`

	// Whitelist protects remote keys from deletion during reconciliation.
	Whitelist []WhitelistEntry `yaml:"whitelist,omitempty"`
}

// HeaderRule applies header values to every key matching Pattern.
type HeaderRule struct {
	Pattern string            `yaml:"pattern"`
	Values  map[string]string `yaml:"values"`

	re *regexp.Regexp
}

// Match reports whether key is covered by this rule. Rules are compiled
// during Load; an uncompiled rule matches nothing.
func (r *HeaderRule) Match(key string) bool {
	return r.re != nil && r.re.MatchString(key)
}

// GzipRule configures the gzip pre-pass.
type GzipRule struct {
	Suffix   string   `yaml:"suffix"`
	Patterns []string `yaml:"patterns"`
	Level    int      `yaml:"level,omitempty"`
}

// WhitelistEntry is one protected key. In YAML it is either a plain string
// (a literal key) or a mapping with a single "pattern" field (a regexp).
type WhitelistEntry struct {
	Literal string
	Pattern string
}

// UnmarshalYAML accepts both whitelist entry forms.
func (e *WhitelistEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		e.Literal = s
		return nil
	case yaml.MappingNode:
		var m struct {
			Pattern string `yaml:"pattern"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		e.Pattern = m.Pattern
		return nil
	default:
		return fmt.Errorf("line %d: whitelist entry must be a string or a {pattern: ...} mapping", node.Line)
	}
}
