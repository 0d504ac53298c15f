package graphql

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/compiler/load"
)

func extensionGraph(t *testing.T, ex *Extension, target string, opts ...gen.Option) *gen.Graph {
	t.Helper()
	s, err := load.Parse(&ast.Source{Name: "movies.graphql", Input: moviesSDL})
	require.NoError(t, err)
	cfg, err := gen.NewConfig(append(append(ex.Options(), gen.WithTarget(target)), opts...)...)
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg, s)
	require.NoError(t, err)
	return g
}

func TestExtensionGenerate(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zap.InfoLevel)
	ex, err := NewExtension(
		WithSchemaPath(filepath.Join(dir, "api", "movies.graphql")),
		WithModels("filters_gen.go"),
		WithSubscriptions(),
		WithLogger(zap.New(core)),
	)
	require.NoError(t, err)
	target := filepath.Join(dir, "filters")
	g := extensionGraph(t, ex, target, gen.WithPackage("filters"))
	require.NoError(t, ex.Generate(context.Background(), g))

	assert.Equal(t, filepath.Join(dir, "api", "movies.graphql"), ex.SchemaPath(target))
	sdl, err := os.ReadFile(filepath.Join(dir, "api", "movies.graphql"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sdl), "# "+gen.DefaultHeader+"\n"))
	loaded, gerr := gqlparser.LoadSchema(&ast.Source{Name: "movies.graphql", Input: string(sdl)})
	require.Nil(t, gerr)
	assert.NotNil(t, loaded.Subscription)
	assert.NotNil(t, loaded.Types["MovieSubscriptionWhere"])

	models, err := os.ReadFile(filepath.Join(target, "filters_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(models), "package filters")
	assert.Contains(t, string(models), "type MovieWhere struct")
	_, err = os.Stat(filepath.Join(target, DefaultSchemaFilename))
	assert.True(t, os.IsNotExist(err), "the schema goes to its own directory")

	require.Equal(t, 1, logs.FilterMessage("schema generated").Len())
	fields := logs.FilterMessage("schema generated").All()[0].ContextMap()
	assert.Equal(t, filepath.Join(dir, "api", "movies.graphql"), fields["schema"])
}

func TestExtensionGenerateTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, gen.ModelsFilename), "package stale\n")

	ex, err := NewExtension(WithExcludeDeprecatedFields())
	require.NoError(t, err)
	g := extensionGraph(t, ex, dir)
	require.NoError(t, ex.Generate(context.Background(), g))

	sdl, err := os.ReadFile(filepath.Join(dir, DefaultSchemaFilename))
	require.NoError(t, err)
	assert.NotContains(t, string(sdl), "@deprecated")
	assert.NotContains(t, string(sdl), "Subscription")
	_, err = os.Stat(filepath.Join(dir, gen.ModelsFilename))
	assert.True(t, os.IsNotExist(err), "stale models are cleaned up")
}

func TestExtensionConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	writeFile(t, path, `
schema: movies.graphql
output: api/schema.graphql
models:
  filename: filters_gen.go
features:
  subscriptions: true
filterable:
  byValue: false
`)
	ex, err := NewExtension(WithConfigPath(path))
	require.NoError(t, err)
	assert.Equal(t, StringList{"movies.graphql"}, ex.Config().Schema)
	assert.Equal(t, DirectiveValues{ByValue: false, ByAggregate: false}, ex.defaults)
	assert.Equal(t, filepath.Join(dir, "api", "schema.graphql"), ex.SchemaPath(dir))

	cfg := &gen.Config{}
	require.NoError(t, cfg.Apply(ex.Options()...))
	assert.True(t, cfg.FeatureEnabled(gen.FeatureSubscriptions))
	assert.True(t, cfg.FeatureEnabled(gen.FeatureModels))
	assert.False(t, cfg.FeatureEnabled(gen.FeatureExcludeDeprecated))

	g := extensionGraph(t, ex, filepath.Join(dir, "filters"))
	require.NoError(t, ex.Generate(context.Background(), g))
	sdl, err := os.ReadFile(filepath.Join(dir, "api", "schema.graphql"))
	require.NoError(t, err)
	// Only fields with an explicit byValue keep value filters.
	assert.NotContains(t, string(sdl), "runtime_EQ")
	assert.Contains(t, string(sdl), "actorsConnection")
}

func TestExtensionOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ExtensionOption
	}{
		{"empty schema path", WithSchemaPath("")},
		{"models extension", WithModels("filters.txt")},
		{"nil logger", WithLogger(nil)},
		{"nil config", WithConfig(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtension(tt.opt)
			require.Error(t, err)
			assert.True(t, gen.IsConfigError(err))
		})
	}

	t.Run("invalid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), DefaultConfigFilename)
		writeFile(t, path, "workers: -2\n")
		_, err := NewExtension(WithConfigPath(path))
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("schema directory", func(t *testing.T) {
		ex, err := NewExtension(WithSchemaPath("api"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("api", DefaultSchemaFilename), ex.SchemaPath("ignored"))
	})

	t.Run("features once", func(t *testing.T) {
		ex, err := NewExtension(WithSubscriptions(), WithSubscriptions(), WithModels(""))
		require.NoError(t, err)
		assert.Len(t, ex.Options(), 1)
		cfg := &gen.Config{}
		require.NoError(t, cfg.Apply(ex.Options()...))
		assert.Len(t, cfg.Features, 2)
		assert.Equal(t, gen.ModelsFilename, ex.modelsFilename)
	})

	t.Run("no features", func(t *testing.T) {
		ex, err := NewExtension()
		require.NoError(t, err)
		assert.Nil(t, ex.Options())
	})
}

func TestExtensionSchemaHook(t *testing.T) {
	dir := t.TempDir()
	var calls []string
	ex, err := NewExtension(
		WithSchemaHook(func(g *gen.Graph, schema string) (string, error) {
			calls = append(calls, "first")
			return schema + "\ndirective @auth on FIELD_DEFINITION\n", nil
		}),
		WithSchemaHook(func(g *gen.Graph, schema string) (string, error) {
			calls = append(calls, "second")
			assert.Contains(t, schema, "@auth")
			return schema, nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, ex.Generate(context.Background(), extensionGraph(t, ex, dir)))
	assert.Equal(t, []string{"first", "second"}, calls)
	sdl, err := os.ReadFile(filepath.Join(dir, DefaultSchemaFilename))
	require.NoError(t, err)
	assert.Contains(t, string(sdl), "directive @auth on FIELD_DEFINITION")

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		ex, err := NewExtension(WithSchemaHook(func(*gen.Graph, string) (string, error) {
			return "", boom
		}))
		require.NoError(t, err)
		err = ex.Generate(context.Background(), extensionGraph(t, ex, t.TempDir()))
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		var genErr *gen.GenerationError
		assert.ErrorAs(t, err, &genErr)
	})
}
