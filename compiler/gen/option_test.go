package gen

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		require.NoError(t, WithHeader("// Custom header")(c))
		assert.Equal(t, "// Custom header", c.HeaderComment())
	})

	t.Run("empty header falls back to default", func(t *testing.T) {
		c := &Config{Header: "existing"}
		require.NoError(t, WithHeader("")(c))
		assert.Equal(t, DefaultHeader, c.HeaderComment())
	})
}

func TestWithTargetAndPackage(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithTarget("./generated")(c))
	require.NoError(t, WithPackage("filters")(c))
	assert.Equal(t, "./generated", c.Target)
	assert.Equal(t, "filters", c.Package)

	err := WithTarget("")(c)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	err = WithPackage("")(c)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestWithWorkers(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		want    int
		wantErr bool
	}{
		{"explicit", 4, 4, false},
		{"zero uses GOMAXPROCS", 0, runtime.GOMAXPROCS(0), false},
		{"negative", -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			err := WithWorkers(tt.n)(c)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.WorkerCount())
		})
	}
}

func TestWithFeatures(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithFeatures(FeatureSubscriptions, FeatureSubscriptions, FeatureModels)(c))
	assert.Len(t, c.Features, 2)
	assert.True(t, c.FeatureEnabled(FeatureSubscriptions))
	assert.True(t, c.FeatureEnabled(FeatureModels))
	assert.False(t, c.FeatureEnabled(FeatureExcludeDeprecated))

	f, ok := FeatureByName("filters/excludedeprecated")
	require.True(t, ok)
	assert.Equal(t, FeatureExcludeDeprecated.Name, f.Name)
	assert.Equal(t, "stable", f.Stage.String())
	_, ok = FeatureByName("privacy")
	assert.False(t, ok)
}

func TestWithAnnotations(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithAnnotations(Annotations{"a": 1})(c))
	require.NoError(t, WithAnnotations(Annotations{"b": 2})(c))
	assert.Equal(t, Annotations{"a": 1, "b": 2}, c.Annotations)
}

func TestNewConfig(t *testing.T) {
	c, err := NewConfig(WithTarget("out"), WithWorkers(2))
	require.NoError(t, err)
	assert.Equal(t, "out", c.Target)
	assert.Equal(t, "models", c.Package)
	assert.Equal(t, 2, c.WorkerCount())

	_, err = NewConfig(WithTarget(""))
	assert.Error(t, err)

	assert.Panics(t, func() { MustNewConfig(WithWorkers(-2)) })
}

func TestApplyAll(t *testing.T) {
	c := &Config{}
	err := c.ApplyAll(WithTarget(""), WithPackage(""), WithWorkers(3))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 3, c.Workers, "valid options are still applied")
}

func TestConfigCleanup(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, ModelsFilename)
	require.NoError(t, os.WriteFile(stale, []byte("package models\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte("scalar X\n"), 0o644))

	c := &Config{Target: dir, Features: []Feature{FeatureModels}}
	require.NoError(t, c.Cleanup())
	assert.FileExists(t, stale, "enabled features keep their output")

	c.Features = nil
	require.NoError(t, c.Cleanup())
	assert.NoFileExists(t, stale)
	assert.DirExists(t, dir, "non-empty directory is kept")
}
