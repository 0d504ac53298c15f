// Package graphql generates the filterable GraphQL schema of a graph.
//
// The @filterable directive decides, field by field, which filters are
// generated:
//
//	directive @filterable(byValue: Boolean = true, byAggregate: Boolean = false) on FIELD_DEFINITION
//
// Value filters compare the value of a field (title_EQ, title: {eq}) or
// quantify over a relationship (actors_SOME, actorsConnection: {some}).
// Aggregation filters compare aggregates over the related nodes
// (title_AVERAGE_LENGTH_EQUAL, actorsConnection: {aggregate}).
//
// # Pipeline
//
// Generation runs in four steps:
//
//	decisions, err := graphql.Decide(g, graphql.DefaultDirectiveValues, logger)
//	shape, err := graphql.Prune(ctx, g, decisions, graphql.PruneOptions{})
//	doc, err := graphql.Assemble(g, shape, graphql.AssembleOptions{})
//	sdl := graphql.Print(doc)
//
// Decide reads the directive of every field, classifies it and resolves
// its Visibility. Relationships to interfaces and unions never get
// aggregation filters, whatever the directive says.
//
// Prune expands every owner type into its generated inputs, then removes
// the containers left without conditional members together with the members
// referring to them. A MovieSubscriptionWhere without filterable scalars is
// dropped, and so is an ActorMoviesConnectionFilters with neither
// quantifiers nor aggregate.
//
// # Usage
//
// The Extension runs the pipeline and writes the schema:
//
//	ex, err := graphql.NewExtension(
//	    graphql.WithConfigPath("./neogql.yml"),
//	    graphql.WithSchemaPath("./generated/schema.graphql"),
//	)
//	if err != nil {
//	    log.Fatalf("creating graphql extension: %v", err)
//	}
//	if err := ex.Generate(ctx, g); err != nil {
//	    log.Fatalf("running neogql codegen: %v", err)
//	}
//
// # Annotations
//
// Fields loaded from SDL carry their @filterable usage. Graphs built in Go
// use the annotation directly:
//
//	f.Annotations[graphql.AnnotationName] = graphql.Filterable(
//	    graphql.ByValue(false),
//	    graphql.ByAggregate(true),
//	)
package graphql
