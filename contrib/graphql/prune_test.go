package graphql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/neogql/compiler/gen"
	"github.com/syssam/neogql/compiler/load"
)

const moviesSDL = `
interface Production {
  title: String!
}

type Movie implements Production {
  title: String! @filterable(byValue: false, byAggregate: true)
  released: DateTime
  runtime: Int
  tags: [String!]
  genre: Genre
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn")
}

type Series implements Production {
  title: String!
  episodes: Int
}

type Actor {
  name: String! @filterable(byAggregate: true)
  movies: [Movie!]! @relationship(type: "ACTED_IN", direction: OUT, properties: "ActedIn") @filterable(byValue: false, byAggregate: true)
  productions: [Production!]! @relationship(type: "ACTED_IN", direction: OUT) @filterable(byAggregate: true)
  search: [Search!]! @relationship(type: "LIKES", direction: OUT) @filterable(byValue: false, byAggregate: false)
}

type ActedIn @relationshipProperties {
  role: String @filterable(byAggregate: true)
  screenTime: Int
}

union Search = Movie | Series

enum Genre {
  ACTION
  DRAMA
}
`

func mustGraph(t *testing.T, sdl string) *gen.Graph {
	t.Helper()
	s, err := load.Parse(&ast.Source{Name: "movies.graphql", Input: sdl})
	require.NoError(t, err)
	g, err := gen.NewGraph(&gen.Config{}, s)
	require.NoError(t, err)
	return g
}

func mustShape(t *testing.T, sdl string, opts PruneOptions) (*gen.Graph, *Shape) {
	t.Helper()
	g := mustGraph(t, sdl)
	d, err := Decide(g, DefaultDirectiveValues, nil)
	require.NoError(t, err)
	s, err := Prune(context.Background(), g, d, opts)
	require.NoError(t, err)
	return g, s
}

func assertMembers(t *testing.T, s *Shape, typ string, present, absent []string) {
	t.Helper()
	gt := s.Type(typ)
	require.NotNil(t, gt, "type %s is generated", typ)
	for _, m := range present {
		assert.NotNil(t, gt.Member(m), "%s.%s is generated", typ, m)
	}
	for _, m := range absent {
		assert.Nil(t, gt.Member(m), "%s.%s is not generated", typ, m)
	}
}

func TestPruneScalarDefault(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	assertMembers(t, s, "MovieWhere",
		[]string{
			"runtime", "runtime_EQ", "runtime_IN", "runtime_LT", "runtime_LTE", "runtime_GT", "runtime_GTE",
			"released", "released_EQ", "released_GTE",
			"tags", "tags_EQ", "tags_INCLUDES",
			"genre", "genre_EQ", "genre_IN",
		},
		[]string{"runtime_CONTAINS", "genre_LT", "tags_IN"},
	)
	assert.Equal(t, "IntScalarFilters", namedType(s.Type("MovieWhere").Member("runtime").Type))
	assert.Equal(t, "StringListFilters", namedType(s.Type("MovieWhere").Member("tags").Type))
	assert.Equal(t, "GenreEnumScalarFilters", namedType(s.Type("MovieWhere").Member("genre").Type))
	assert.Equal(t, "[String!]", s.Type("MovieWhere").Member("tags_EQ").Type.String())
	assert.Equal(t, "Please use the relevant generic filter runtime: { eq: ... }", s.Type("MovieWhere").Member("runtime_EQ").Deprecated)
	assert.Empty(t, s.Type("MovieWhere").Member("runtime").Deprecated)

	assertMembers(t, s, "ActorMoviesNodeAggregationWhereInput", nil,
		[]string{"runtime", "runtime_AVERAGE_EQUAL", "runtime_MAX_GT", "released", "released_MIN_LT"},
	)
	assertMembers(t, s, "IntScalarFilters", []string{"eq", "in", "lt", "lte", "gt", "gte"}, []string{"contains"})
}

func TestPruneScalarValueDisabled(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	assertMembers(t, s, "MovieWhere", nil, []string{
		"title", "title_EQ", "title_IN", "title_CONTAINS", "title_STARTS_WITH", "title_ENDS_WITH",
	})
	// The interface field is declared without the directive.
	assertMembers(t, s, "ProductionWhere", []string{"title", "title_CONTAINS"}, nil)

	assertMembers(t, s, "ActorMoviesNodeAggregationWhereInput", []string{
		"title",
		"title_AVERAGE_LENGTH_EQUAL", "title_AVERAGE_LENGTH_GT", "title_AVERAGE_LENGTH_GTE", "title_AVERAGE_LENGTH_LT", "title_AVERAGE_LENGTH_LTE",
		"title_LONGEST_LENGTH_EQUAL", "title_LONGEST_LENGTH_GT", "title_LONGEST_LENGTH_GTE", "title_LONGEST_LENGTH_LT", "title_LONGEST_LENGTH_LTE",
		"title_SHORTEST_LENGTH_EQUAL", "title_SHORTEST_LENGTH_GT", "title_SHORTEST_LENGTH_GTE", "title_SHORTEST_LENGTH_LT", "title_SHORTEST_LENGTH_LTE",
	}, nil)
	nw := s.Type("ActorMoviesNodeAggregationWhereInput")
	assert.Equal(t, "StringScalarAggregationFilters", namedType(nw.Member("title").Type))
	assert.Equal(t, "Float", namedType(nw.Member("title_AVERAGE_LENGTH_EQUAL").Type))
	assert.Equal(t, "Int", namedType(nw.Member("title_LONGEST_LENGTH_GT").Type))
	assert.Equal(t, "Please use the relevant generic filter title: { averageLength: { eq: ... } }", nw.Member("title_AVERAGE_LENGTH_EQUAL").Deprecated)

	assertMembers(t, s, "StringScalarAggregationFilters", []string{"averageLength", "longestLength", "shortestLength"}, nil)
	assert.Equal(t, "FloatScalarFilters", namedType(s.Type("StringScalarAggregationFilters").Member("averageLength").Type))
	assert.True(t, s.Has("FloatScalarFilters"))
}

func TestPruneAbstractRelationship(t *testing.T) {
	g, s := mustShape(t, moviesSDL, PruneOptions{})

	d, err := Decide(g, DefaultDirectiveValues, nil)
	require.NoError(t, err)
	dec, ok := d.Lookup("Actor", "productions")
	require.True(t, ok)
	assert.True(t, dec.Directive.ByAggregate, "the directive asked for aggregation")
	assert.False(t, dec.Visibility.Aggregate)

	assertMembers(t, s, "ActorWhere",
		[]string{"productions", "productions_SOME", "productionsConnection", "productionsConnection_NONE"},
		[]string{"productionsAggregate"},
	)
	assertMembers(t, s, "ActorProductionsConnectionFilters", []string{"all", "none", "single", "some"}, []string{"aggregate"})
	assert.False(t, s.Has("ActorProductionsAggregateInput"))
	assert.False(t, s.Has("ActorProductionsNodeAggregationWhereInput"))
	assert.False(t, s.Has("ActorProductionProductionsAggregationSelection"))
	for _, typ := range s.Types() {
		if typ.Key.Owner == "Actor" && typ.Key.Field == "productions" {
			assert.NotContains(t, []ShapeKind{AggregateInput, NodeAggregationWhereInput, AggregateSelection}, typ.Key.Kind, typ.Name)
		}
	}
}

func TestPruneRelationshipValueOnly(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	assertMembers(t, s, "MovieActorsConnectionFilters", []string{"all", "none", "single", "some"}, []string{"aggregate"})
	assertMembers(t, s, "MovieWhere",
		[]string{"actors", "actors_ALL", "actors_NONE", "actors_SINGLE", "actors_SOME", "actorsConnection", "actorsConnection_ALL"},
		[]string{"actorsAggregate"},
	)
	assert.Equal(t, "ActorRelationshipFilters", namedType(s.Type("MovieWhere").Member("actors").Type))
	assertMembers(t, s, "ActorRelationshipFilters", []string{"all", "none", "single", "some"}, nil)
	assert.False(t, s.Has("MovieActorsAggregateInput"))
	assert.False(t, s.Has("MovieActorsNodeAggregationWhereInput"))
	// Aggregate selections do not depend on the directive.
	assertMembers(t, s, "MovieActorActorsAggregationSelection", []string{"count", "node", "edge"}, nil)
}

func TestPruneRelationshipAggregateOnly(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	assert.Equal(t, []string{"aggregate"}, s.Type("ActorMoviesConnectionFilters").MemberNames())
	assertMembers(t, s, "ActorWhere",
		[]string{"moviesConnection", "moviesAggregate"},
		[]string{
			"movies", "movies_ALL", "movies_NONE", "movies_SINGLE", "movies_SOME",
			"moviesConnection_ALL", "moviesConnection_NONE", "moviesConnection_SINGLE", "moviesConnection_SOME",
		},
	)
	assert.False(t, s.Has("MovieRelationshipFilters"))
	assertMembers(t, s, "ActorMoviesAggregateInput",
		[]string{"AND", "OR", "NOT", "count", "count_EQ", "count_LT", "count_LTE", "count_GT", "count_GTE", "node", "edge"},
		nil,
	)
	assertMembers(t, s, "ActorMoviesEdgeAggregationWhereInput",
		[]string{"role", "role_AVERAGE_LENGTH_EQUAL"},
		[]string{"screenTime", "screenTime_SUM_EQUAL"},
	)
	// The connection argument stays.
	assertMembers(t, s, "ActorMoviesConnectionWhere", []string{"node", "edge"}, nil)
}

func TestPruneUnionRelationshipDisabled(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	assertMembers(t, s, "ActorWhere", nil, []string{
		"search", "search_ALL", "search_NONE", "search_SINGLE", "search_SOME",
		"searchConnection", "searchConnection_ALL", "searchConnection_SOME", "searchAggregate",
	})
	assert.False(t, s.Has("ActorSearchConnectionFilters"))
	assert.False(t, s.Has("SearchRelationshipFilters"))
	assert.False(t, s.Has("ActorSearchAggregateInput"))

	assert.Equal(t, []string{"Movie", "Series"}, s.Type("ActorSearchConnectionWhere").MemberNames())
	assertMembers(t, s, "ActorSearchMovieConnectionWhere", []string{"node", "AND"}, []string{"edge"})
	assert.Equal(t, []string{"Movie", "Series"}, s.Type("SearchWhere").MemberNames())
}

func TestPruneSubscriptionWhere(t *testing.T) {
	t.Run("kept with filterable scalars", func(t *testing.T) {
		_, s := mustShape(t, moviesSDL, PruneOptions{Subscriptions: true})
		assertMembers(t, s, "MovieSubscriptionWhere",
			[]string{"runtime", "runtime_GT", "released", "genre"},
			[]string{"title", "title_EQ", "actors", "actorsConnection"},
		)
	})

	t.Run("omitted without filterable scalars", func(t *testing.T) {
		_, s := mustShape(t, `
type Movie {
  title: String @filterable(byValue: false, byAggregate: true)
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN)
}

type Actor {
  name: String!
  movies: [Movie!]! @relationship(type: "ACTED_IN", direction: OUT) @filterable(byAggregate: true)
}
`, PruneOptions{Subscriptions: true})
		assert.False(t, s.Has("MovieSubscriptionWhere"))
		assert.True(t, s.Has("ActorSubscriptionWhere"))
		assert.True(t, s.Has("MovieWhere"), "where inputs are pinned by the queries")
		assertMembers(t, s, "MovieWhere", []string{"actors", "actorsConnection"}, []string{"title"})
		assertMembers(t, s, "ActorMoviesNodeAggregationWhereInput", []string{"title", "title_SHORTEST_LENGTH_LT"}, nil)
	})

	t.Run("disabled", func(t *testing.T) {
		_, s := mustShape(t, moviesSDL, PruneOptions{})
		assert.False(t, s.Has("MovieSubscriptionWhere"))
	})
}

func TestPruneCascade(t *testing.T) {
	_, s := mustShape(t, `
type Movie {
  title: String
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN, properties: "ActedIn") @filterable(byAggregate: true)
}

type Actor {
  name: String! @filterable(byValue: false)
  born: Boolean
}

type ActedIn @relationshipProperties {
  role: String @filterable(byValue: false)
}
`, PruneOptions{})

	// The properties where input is empty, so the edge members go with it.
	assert.False(t, s.Has("ActedInWhere"))
	assertMembers(t, s, "MovieActorsConnectionWhere", []string{"node"}, []string{"edge"})
	// No field of Actor or ActedIn can be aggregated.
	assert.False(t, s.Has("MovieActorsNodeAggregationWhereInput"))
	assert.False(t, s.Has("MovieActorsEdgeAggregationWhereInput"))
	assertMembers(t, s, "MovieActorsAggregateInput", []string{"count"}, []string{"node", "edge"})
	assertMembers(t, s, "MovieActorsConnectionFilters", []string{"all", "aggregate"}, nil)
	// Pinned inputs stay even with only combinators left.
	assertMembers(t, s, "ActorWhere", []string{"AND", "born", "born_EQ"}, []string{"name", "born_IN"})
	// Selections ignore the directive. Booleans cannot be selected.
	assertMembers(t, s, "MovieActorActorsAggregationSelection", []string{"count", "node", "edge"}, nil)
	assert.Equal(t, []string{"name"}, s.Type("MovieActorActorsNodeAggregateSelection").MemberNames())
}

func TestPruneExcludeDeprecated(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{ExcludeDeprecated: true, Subscriptions: true})

	for _, typ := range s.Types() {
		for _, m := range typ.Members {
			assert.Empty(t, m.Deprecated, "%s.%s", typ.Name, m.Name)
		}
	}
	assertMembers(t, s, "MovieWhere", []string{"runtime", "actors", "actorsConnection"}, []string{"runtime_EQ", "actors_SOME"})
	assertMembers(t, s, "ActorWhere", []string{"moviesConnection"}, []string{"moviesAggregate"})
	assertMembers(t, s, "ActorMoviesAggregateInput", []string{"count", "node"}, []string{"count_EQ"})
	assertMembers(t, s, "ActorMoviesNodeAggregationWhereInput", []string{"title"}, []string{"title_AVERAGE_LENGTH_EQUAL"})
}

func TestPruneAllFiltersDisabled(t *testing.T) {
	_, s := mustShape(t, `
type Movie {
  title: String @filterable(byValue: false, byAggregate: false)
  actors: [Actor!]! @relationship(type: "ACTED_IN", direction: IN) @filterable(byValue: false, byAggregate: false)
}

type Actor {
  name: String
}
`, PruneOptions{Subscriptions: true})

	assert.Equal(t, []string{"AND", "NOT", "OR"}, s.Type("MovieWhere").MemberNames())
	assert.False(t, s.Has("MovieActorsConnectionFilters"))
	assert.False(t, s.Has("MovieSubscriptionWhere"))
	assert.True(t, s.Has("MovieActorsConnectionWhere"))
	assert.True(t, s.Has("StringScalarFilters"), "still used by ActorWhere")
}

func TestPruneIdempotent(t *testing.T) {
	g := mustGraph(t, moviesSDL)
	opts := PruneOptions{Subscriptions: true, Workers: 2}

	shapes := make([]*Shape, 2)
	for i := range shapes {
		d, err := Decide(g, DefaultDirectiveValues, nil)
		require.NoError(t, err)
		shapes[i], err = Prune(context.Background(), g, d, opts)
		require.NoError(t, err)
	}
	require.Equal(t, shapes[0].Names(), shapes[1].Names())
	for _, name := range shapes[0].Names() {
		assert.Equal(t, shapes[0].Type(name).MemberNames(), shapes[1].Type(name).MemberNames(), name)
		assert.Equal(t, shapes[0].Type(name).Key, shapes[1].Type(name).Key, name)
	}
}

func TestPruneKeys(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	tests := []struct {
		key  ShapeKey
		name string
	}{
		{ShapeKey{Owner: "Movie", Kind: Where}, "MovieWhere"},
		{ShapeKey{Owner: "Actor", Field: "movies", Kind: ConnectionWhere}, "ActorMoviesConnectionWhere"},
		{ShapeKey{Owner: "Actor", Field: "search", Member: "Series", Kind: ConnectionWhere}, "ActorSearchSeriesConnectionWhere"},
		{ShapeKey{Owner: "Actor", Field: "movies", Kind: ConnectionFilters}, "ActorMoviesConnectionFilters"},
		{ShapeKey{Owner: "Actor", Field: "movies", Kind: AggregateInput}, "ActorMoviesAggregateInput"},
		{ShapeKey{Owner: "Actor", Field: "movies", Kind: NodeAggregationWhereInput}, "ActorMoviesNodeAggregationWhereInput"},
		{ShapeKey{Owner: "Actor", Field: "movies", Kind: EdgeAggregationWhereInput}, "ActorMoviesEdgeAggregationWhereInput"},
		{ShapeKey{Owner: "Actor", Kind: RelationshipFilters}, "ActorRelationshipFilters"},
		{ShapeKey{Owner: "String", Kind: ScalarFilters}, "StringScalarFilters"},
		{ShapeKey{Owner: "String", Member: "list", Kind: ScalarFilters}, "StringListFilters"},
		{ShapeKey{Owner: "Movie", Kind: AggregateSelection}, "MovieAggregateSelection"},
		{ShapeKey{Owner: "Actor", Field: "movies", Member: "node", Kind: AggregateSelection}, "ActorMovieMoviesNodeAggregateSelection"},
	}
	for _, tt := range tests {
		typ, ok := s.Lookup(tt.key)
		if assert.True(t, ok, tt.name) {
			assert.Equal(t, tt.name, typ.Name)
		}
	}
	assert.Equal(t, "NodeAggregationWhereInput", NodeAggregationWhereInput.String())
	assert.Equal(t, "ShapeKind(0)", ShapeKind(0).String())
}

func TestPruneSelections(t *testing.T) {
	_, s := mustShape(t, moviesSDL, PruneOptions{})

	sel := s.Type("MovieAggregateSelection")
	require.NotNil(t, sel)
	assert.True(t, sel.Output)
	assert.Equal(t, []string{"count", "released", "runtime", "title"}, sel.MemberNames())
	assert.Equal(t, "Int!", sel.Member("count").Type.String())
	assert.Equal(t, "StringAggregateSelection!", sel.Member("title").Type.String())
	assert.Equal(t, []string{"longest", "shortest"}, s.Type("StringAggregateSelection").MemberNames())
	assert.Equal(t, []string{"average", "max", "min", "sum"}, s.Type("IntAggregateSelection").MemberNames())
	assert.Equal(t, []string{"max", "min"}, s.Type("DateTimeAggregateSelection").MemberNames())
	assert.Equal(t, []string{"role", "screenTime"}, s.Type("ActorMovieMoviesEdgeAggregateSelection").MemberNames())
	for _, in := range s.Inputs() {
		assert.False(t, in.Output, in.Name)
	}
}

func TestPruneCanceled(t *testing.T) {
	g := mustGraph(t, moviesSDL)
	d, err := Decide(g, DefaultDirectiveValues, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Prune(ctx, g, d, PruneOptions{Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeprecation(t *testing.T) {
	assert.Equal(t, "Please use the relevant generic filter title: ...", deprecation("title"))
	assert.Equal(t, "Please use the relevant generic filter actorsConnection: { aggregate: ... }", deprecation("actorsConnection", "aggregate"))
}
