package neogql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/neogql"
)

func TestUnresolvedTypeError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := neogql.NewUnresolvedTypeError("Studio", "Movie.studio")
		assert.Equal(t, `neogql: unresolved type "Studio" (referenced by Movie.studio)`, err.Error())

		err = neogql.NewUnresolvedTypeError("Studio", "")
		assert.Equal(t, `neogql: unresolved type "Studio"`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := neogql.NewUnresolvedTypeError("Studio", "Movie.studio")
		assert.True(t, errors.Is(err, neogql.ErrUnresolvedType))
		assert.False(t, errors.Is(err, neogql.ErrInvalidDirective))
	})

	t.Run("IsUnresolvedType", func(t *testing.T) {
		err := neogql.NewUnresolvedTypeError("Studio", "Movie.studio")
		assert.True(t, neogql.IsUnresolvedType(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, neogql.IsUnresolvedType(wrapped))

		// Sentinel error
		assert.True(t, neogql.IsUnresolvedType(neogql.ErrUnresolvedType))

		// Non-matching error
		assert.False(t, neogql.IsUnresolvedType(errors.New("other error")))
		assert.False(t, neogql.IsUnresolvedType(nil))
	})
}

func TestDirectiveError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := neogql.NewDirectiveError("filterable", "byValue", "Movie.title", "expected Boolean literal")
		assert.Equal(t, "neogql: @filterable(byValue) on Movie.title: expected Boolean literal", err.Error())

		err = neogql.NewDirectiveError("relationship", "", "Actor.movies", "missing type")
		assert.Equal(t, "neogql: @relationship on Actor.movies: missing type", err.Error())
	})

	t.Run("IsDirectiveError", func(t *testing.T) {
		err := neogql.NewDirectiveError("filterable", "byAggregate", "Movie.title", "bad")
		assert.True(t, neogql.IsDirectiveError(err))
		assert.True(t, errors.Is(err, neogql.ErrInvalidDirective))
		assert.True(t, neogql.IsDirectiveError(fmt.Errorf("load: %w", err)))
		assert.False(t, neogql.IsDirectiveError(nil))
	})
}

func TestConfigurationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := neogql.NewConfigurationError("Actor.movies", neogql.ErrUnknownFieldKind)
		require.Error(t, err)
		assert.Equal(t, "neogql: configuration error in Actor.movies: neogql: unknown field kind", err.Error())
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, neogql.NewConfigurationError("Actor.movies", nil))
	})

	t.Run("Unwrap", func(t *testing.T) {
		err := neogql.NewConfigurationError("Actor.movies", neogql.ErrUnknownFieldKind)
		assert.True(t, errors.Is(err, neogql.ErrUnknownFieldKind))
		assert.True(t, neogql.IsConfigurationError(err))
		assert.True(t, neogql.IsConfigurationError(fmt.Errorf("prune: %w", err)))
		assert.False(t, neogql.IsConfigurationError(neogql.ErrUnknownFieldKind))
		assert.False(t, neogql.IsConfigurationError(nil))
	})
}
