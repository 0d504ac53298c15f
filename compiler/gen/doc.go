// Package gen provides the type graph and the generation plumbing of neogql.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	SDL files (schema/*.graphql)
//	        ↓
//	   load.Schema (compiler/load)
//	        ↓
//	   Graph (resolved types, fields and relationships)
//	        ↓
//	   Extensions (contrib/graphql)
//	        ↓
//	   Writer (schema.graphql, filters_gen.go)
//
// # Key Types
//
//   - Graph: Holds the resolved node, interface, union, properties, enum and scalar types
//   - Type: A named type with its fields, interfaces, implementations or members
//   - Field: A field with its type reference, target type, relationship and annotations
//   - Config: Global configuration for generation
//   - Writer: Parallel file writer, formatting Go sources with goimports
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: Type and field definition errors
//   - ConfigError: Configuration errors
//   - RelationshipError: @relationship errors
//   - GenerationError: Generation and write errors
//   - ValidationError: Validation errors
//
// NewGraph collects every resolution error before returning; use
// multierr.Errors to list them:
//
//	graph, err := gen.NewGraph(config, schema)
//	if err != nil {
//	    for _, err := range multierr.Errors(err) {
//	        if gen.IsRelationshipError(err) {
//	            // Handle relationship-specific error
//	        }
//	    }
//	    return err
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	config, err := gen.NewConfig(
//	    gen.WithTarget("./generated"),
//	    gen.WithFeatures(gen.FeatureSubscriptions),
//	    gen.WithWorkers(4),
//	)
//
// # Features
//
//   - subscriptions: Subscription root type and SubscriptionWhere inputs
//   - filters/excludedeprecated: Drop deprecated flat operator fields
//   - models: Go input models for the generated filters
package gen
