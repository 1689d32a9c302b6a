package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a bucketpub.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	// Compile header rule patterns; Validate has already vetted them.
	for i := range cfg.Headers {
		cfg.Headers[i].re = regexp.MustCompile(cfg.Headers[i].Pattern)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = "public"
	}
	if cfg.Encodings == nil && cfg.Gzip != nil && cfg.Gzip.Suffix != "" {
		cfg.Encodings = map[string]string{cfg.Gzip.Suffix: "gzip"}
	}
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported version %d — only version 1 is supported", cfg.Version))
	}

	if cfg.Bucket == "" {
		errs = append(errs, "'bucket' is required")
	}

	if cfg.FlushEvery < 0 {
		errs = append(errs, fmt.Sprintf("'flush_every' must not be negative, got %d", cfg.FlushEvery))
	}

	for i, rule := range cfg.Headers {
		prefix := fmt.Sprintf("headers[%d]", i)
		if rule.Pattern == "" {
			errs = append(errs, fmt.Sprintf("%s: 'pattern' is required", prefix))
		} else if _, err := regexp.Compile(rule.Pattern); err != nil {
			errs = append(errs, fmt.Sprintf("%s: invalid pattern %q: %v", prefix, rule.Pattern, err))
		}
		if len(rule.Values) == 0 {
			errs = append(errs, fmt.Sprintf("%s: 'values' must not be empty", prefix))
		}
	}

	if cfg.Gzip != nil {
		if cfg.Gzip.Suffix == "" {
			errs = append(errs, "gzip: 'suffix' is required")
		}
		if len(cfg.Gzip.Patterns) == 0 {
			errs = append(errs, "gzip: 'patterns' must not be empty")
		}
		for i, p := range cfg.Gzip.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				errs = append(errs, fmt.Sprintf("gzip.patterns[%d]: invalid pattern %q: %v", i, p, err))
			}
		}
	}

	for i, e := range cfg.Whitelist {
		prefix := fmt.Sprintf("whitelist[%d]", i)
		switch {
		case e.Literal == "" && e.Pattern == "":
			errs = append(errs, fmt.Sprintf("%s: entry is empty", prefix))
		case e.Pattern != "":
			if _, err := regexp.Compile(e.Pattern); err != nil {
				errs = append(errs, fmt.Sprintf("%s: invalid pattern %q: %v", prefix, e.Pattern, err))
			}
		}
	}

	return errs
}
