package gen

import (
	"maps"
	"runtime"

	"go.uber.org/multierr"
)

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by neogql. DO NOT EDIT."

// Config holds the global configuration for schema generation.
type Config struct {
	// Target is the output directory of generated artifacts.
	Target string
	// Package is the Go package name of generated models.
	Package string
	// Header is written at the top of each generated file.
	Header string
	// Features holds the enabled feature-flags.
	Features []Feature
	// Workers bounds the parallelism of pruning and writing.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int
	// Annotations are global annotations available to extensions.
	Annotations Annotations
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the Go package name of generated models.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		for _, f := range features {
			if !c.FeatureEnabled(f) {
				c.Features = append(c.Features, f)
			}
		}
		return nil
	}
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewConfigError("Workers", n, "workers cannot be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithAnnotations sets global annotations.
func WithAnnotations(annotations Annotations) Option {
	return func(c *Config) error {
		if c.Annotations == nil {
			c.Annotations = make(Annotations)
		}
		maps.Copy(c.Annotations, annotations)
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs error
	for _, opt := range opts {
		errs = multierr.Append(errs, opt(c))
	}
	return errs
}

// FeatureEnabled reports whether the given feature-flag is enabled,
// either explicitly or by default.
func (c *Config) FeatureEnabled(f Feature) bool {
	for _, e := range c.Features {
		if e.Name == f.Name {
			return true
		}
	}
	return f.Default
}

// WorkerCount returns the effective number of parallel workers.
func (c *Config) WorkerCount() int {
	if c == nil || c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// HeaderComment returns the configured header or the default one.
func (c *Config) HeaderComment() string {
	if c == nil || c.Header == "" {
		return DefaultHeader
	}
	return c.Header
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{Package: "models"}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
