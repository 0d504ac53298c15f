package graphql

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/syssam/neogql/compiler/gen"
)

// SchemaHook is a function that is called after GraphQL schema generation.
// It receives the graph and the generated schema content, and can modify
// or perform additional processing on the schema.
type SchemaHook func(g *gen.Graph, schema string) (string, error)

// Extension generates the filterable GraphQL schema of a graph, and
// optionally the Go models of its filter inputs.
//
// Usage:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("./neogql.yml"),
//	    graphql.WithSchemaPath("./generated/schema.graphql"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := gen.NewConfig(append(ex.Options(), gen.WithTarget("./generated"))...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	g, err := gen.NewGraph(cfg, s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = ex.Generate(ctx, g)
type Extension struct {
	config   *Config
	defaults DirectiveValues
	logger   *zap.Logger

	// schemaDir and schemaFilename locate the generated schema. An empty
	// schemaDir means the graph target directory.
	schemaDir      string
	schemaFilename string

	// modelsFilename is the Go models file in the graph target directory.
	modelsFilename string

	// features are enabled on the generation config through Options.
	features []gen.Feature

	// schemaHooks are hooks to run after schema generation.
	schemaHooks []SchemaHook
}

// ExtensionOption is a function that configures the Extension.
type ExtensionOption func(*Extension) error

// NewExtension creates a new GraphQL extension with the given options.
//
// The @filterable directive on each field controls which filters are
// generated. Extension options are for global settings only:
//   - WithConfigPath() - path to neogql.yml
//   - WithSchemaPath() - output path for the generated schema
//   - WithFilterableDefaults() - defaults of omitted directive arguments
func NewExtension(opts ...ExtensionOption) (*Extension, error) {
	ex := &Extension{
		config:         &Config{},
		defaults:       DefaultDirectiveValues,
		logger:         zap.NewNop(),
		schemaFilename: DefaultSchemaFilename,
		modelsFilename: gen.ModelsFilename,
	}
	for _, opt := range opts {
		if err := opt(ex); err != nil {
			return nil, err
		}
	}
	return ex, nil
}

// Options returns the generation config options required by the extension.
// They enable the features selected by the extension options.
func (e *Extension) Options() []gen.Option {
	if len(e.features) == 0 {
		return nil
	}
	return []gen.Option{gen.WithFeatures(e.features...)}
}

// Config returns the loaded configuration. It is empty unless
// WithConfigPath or WithConfig was used.
func (e *Extension) Config() *Config {
	return e.config
}

// SchemaPath returns the path of the generated schema relative to target.
func (e *Extension) SchemaPath(target string) string {
	dir := e.schemaDir
	if dir == "" {
		dir = target
	}
	return filepath.Join(dir, e.schemaFilename)
}

// Generate resolves the field visibility of g, prunes the generated types
// and writes the schema, and the models when enabled.
func (e *Extension) Generate(ctx context.Context, g *gen.Graph) error {
	decisions, err := Decide(g, e.defaults, e.logger)
	if err != nil {
		return err
	}
	subscriptions := g.FeatureEnabled(gen.FeatureSubscriptions)
	shape, err := Prune(ctx, g, decisions, PruneOptions{
		Subscriptions:     subscriptions,
		ExcludeDeprecated: g.FeatureEnabled(gen.FeatureExcludeDeprecated),
		Workers:           g.WorkerCount(),
		Logger:            e.logger,
	})
	if err != nil {
		return err
	}
	doc, err := Assemble(g, shape, AssembleOptions{Subscriptions: subscriptions})
	if err != nil {
		return err
	}
	sdl := "# " + g.HeaderComment() + "\n\n" + Print(doc)
	for _, hook := range e.schemaHooks {
		if sdl, err = hook(g, sdl); err != nil {
			return gen.NewGenerationError("schema hook", e.schemaFilename, "hook failed", err)
		}
	}

	writers := []*gen.Writer{gen.NewWriter(g.Target).WithWorkers(g.WorkerCount())}
	if e.schemaDir != "" && filepath.Clean(e.schemaDir) != filepath.Clean(g.Target) {
		writers = append(writers, gen.NewWriter(e.schemaDir))
	}
	writers[len(writers)-1].WriteFile(e.schemaFilename, []byte(sdl))
	if g.FeatureEnabled(gen.FeatureModels) {
		writers[0].WriteJen(e.modelsFilename, Models(shape, g.Package, g.HeaderComment()))
	}
	for _, w := range writers {
		if err := w.Flush(ctx); err != nil {
			return err
		}
	}
	e.logger.Info("schema generated",
		zap.String("schema", e.SchemaPath(g.Target)),
		zap.Int("decisions", decisions.Len()),
		zap.Int("types", shape.Len()),
	)
	return g.Cleanup()
}

// =============================================================================
// Extension options
// =============================================================================

// WithSchemaPath sets the output path of the generated schema.
// The path can be either a directory or a file path:
//   - "schema/" or "schema" -> outputs to schema/schema.graphql
//   - "schema/movies.graphql" -> outputs to schema/movies.graphql
//
// If not set, the schema goes to the graph target directory.
func WithSchemaPath(schemaPath string) ExtensionOption {
	return func(e *Extension) error {
		if schemaPath == "" {
			return gen.NewConfigError("WithSchemaPath", schemaPath, "path cannot be empty")
		}
		if filepath.Ext(schemaPath) == ".graphql" {
			e.schemaDir = filepath.Dir(schemaPath)
			e.schemaFilename = filepath.Base(schemaPath)
		} else {
			e.schemaDir = schemaPath
		}
		return nil
	}
}

// WithModels enables the Go models of the filter inputs. An empty filename
// keeps the default.
func WithModels(filename string) ExtensionOption {
	return func(e *Extension) error {
		if filename != "" {
			if filepath.Ext(filename) != ".go" {
				return gen.NewConfigError("WithModels", filename, "models file must have the .go extension")
			}
			e.modelsFilename = filepath.Base(filename)
		}
		e.enable(gen.FeatureModels)
		return nil
	}
}

// WithSubscriptions enables the change event subscriptions and their
// SubscriptionWhere inputs.
func WithSubscriptions() ExtensionOption {
	return func(e *Extension) error {
		e.enable(gen.FeatureSubscriptions)
		return nil
	}
}

// WithExcludeDeprecatedFields drops the legacy filter members.
func WithExcludeDeprecatedFields() ExtensionOption {
	return func(e *Extension) error {
		e.enable(gen.FeatureExcludeDeprecated)
		return nil
	}
}

// WithFilterableDefaults sets the values of omitted @filterable arguments
// and of fields without the directive.
//
// Example:
//
//	// Opt every field into aggregation filters
//	graphql.WithFilterableDefaults(graphql.DirectiveValues{ByValue: true, ByAggregate: true})
func WithFilterableDefaults(v DirectiveValues) ExtensionOption {
	return func(e *Extension) error {
		e.defaults = v
		return nil
	}
}

// WithLogger sets the logger. Decisions and pruning are logged at debug
// level.
func WithLogger(logger *zap.Logger) ExtensionOption {
	return func(e *Extension) error {
		if logger == nil {
			return gen.NewConfigError("WithLogger", nil, "logger cannot be nil")
		}
		e.logger = logger
		return nil
	}
}

// WithConfig applies a configuration: the schema output, models, features
// and directive defaults.
func WithConfig(cfg *Config) ExtensionOption {
	return func(e *Extension) error {
		if cfg == nil {
			return gen.NewConfigError("WithConfig", nil, "config cannot be nil")
		}
		e.config = cfg
		e.defaults = cfg.Filterable.Values()
		if cfg.Output != "" {
			if err := WithSchemaPath(cfg.OutputPath())(e); err != nil {
				return err
			}
		}
		if cfg.Models.Enabled() {
			if err := WithModels(cfg.Models.Filename)(e); err != nil {
				return err
			}
		}
		if cfg.Features.Subscriptions {
			e.enable(gen.FeatureSubscriptions)
		}
		if cfg.Features.ExcludeDeprecatedFields {
			e.enable(gen.FeatureExcludeDeprecated)
		}
		return nil
	}
}

// WithConfigPath loads and applies a neogql.yml configuration file.
//
// Example:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("./neogql.yml"),
//	)
func WithConfigPath(path string) ExtensionOption {
	return func(e *Extension) error {
		cfg, err := LoadConfig(path)
		if err != nil {
			return fmt.Errorf("load neogql config %q: %w", path, err)
		}
		return WithConfig(cfg)(e)
	}
}

// WithSchemaHook adds a hook that runs after GraphQL schema generation.
// Multiple hooks can be added and will be executed in order.
// Each hook receives the graph and schema content, and can modify the schema.
//
// Example:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithSchemaHook(func(g *gen.Graph, schema string) (string, error) {
//	        return schema + "\ndirective @auth on FIELD_DEFINITION\n", nil
//	    }),
//	)
func WithSchemaHook(hooks ...SchemaHook) ExtensionOption {
	return func(e *Extension) error {
		e.schemaHooks = append(e.schemaHooks, hooks...)
		return nil
	}
}

func (e *Extension) enable(f gen.Feature) {
	for _, ef := range e.features {
		if ef.Name == f.Name {
			return
		}
	}
	e.features = append(e.features, f)
}
