package graphql

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the configuration file looked up by the CLI.
const DefaultConfigFilename = "neogql.yml"

// DefaultSchemaFilename is the file name of the generated schema.
const DefaultSchemaFilename = "schema.graphql"

// Config represents the neogql.yml configuration.
type Config struct {
	// Schema holds the SDL files or glob patterns to load.
	Schema StringList `yaml:"schema,omitempty"`

	// Output is the path of the generated schema file.
	Output string `yaml:"output,omitempty"`

	// Models configures the generated Go filter inputs.
	Models ModelsConfig `yaml:"models,omitempty"`

	// Features toggles optional parts of the generated schema.
	Features FeaturesConfig `yaml:"features,omitempty"`

	// Filterable overrides the defaults of omitted @filterable arguments.
	Filterable FilterableConfig `yaml:"filterable,omitempty"`

	// Workers bounds parallel generation. Zero uses GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// dir is the directory of the loaded file. Relative paths resolve
	// against it.
	dir string
}

// ModelsConfig configures the Go model generation.
type ModelsConfig struct {
	Filename string `yaml:"filename,omitempty"`
	Package  string `yaml:"package,omitempty"`
}

// Enabled reports whether models are generated.
func (c ModelsConfig) Enabled() bool {
	return c.Filename != ""
}

// FeaturesConfig toggles optional parts of the generated schema.
type FeaturesConfig struct {
	Subscriptions           bool `yaml:"subscriptions,omitempty"`
	ExcludeDeprecatedFields bool `yaml:"excludeDeprecatedFields,omitempty"`
}

// FilterableConfig holds the defaults of omitted @filterable arguments.
type FilterableConfig struct {
	ByValue     *bool `yaml:"byValue,omitempty"`
	ByAggregate *bool `yaml:"byAggregate,omitempty"`
}

// Values returns the directive defaults, falling back to
// DefaultDirectiveValues for unset keys.
func (c FilterableConfig) Values() DirectiveValues {
	return FilterableAnnotation(c).apply(DefaultDirectiveValues)
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// LoadConfig loads a neogql.yml configuration file. A missing file yields
// an empty configuration.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{dir: filepath.Dir(path)}, nil
		}
		return nil, fmt.Errorf("read neogql config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse neogql config: %w", err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("parse neogql config: workers must be non-negative, got %d", cfg.Workers)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// SaveConfig saves a neogql.yml configuration file.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal neogql config: %w", err)
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath adds a schema path to the configuration if not already present.
func (c *Config) AddSchemaPath(path string) {
	if !slices.Contains(c.Schema, path) {
		c.Schema = append(c.Schema, path)
	}
}

// Path resolves p against the directory of the configuration file.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// SchemaPatterns returns the schema patterns resolved against the
// configuration directory.
func (c *Config) SchemaPatterns() []string {
	patterns := make([]string, len(c.Schema))
	for i, p := range c.Schema {
		patterns[i] = c.Path(p)
	}
	return patterns
}

// OutputPath returns the resolved path of the generated schema.
func (c *Config) OutputPath() string {
	if c.Output == "" {
		return c.Path(DefaultSchemaFilename)
	}
	return c.Path(c.Output)
}
