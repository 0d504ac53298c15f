// neogql generates the filterable GraphQL schema of a graph SDL.
//
//	neogql generate -c neogql.yml
//	neogql generate --schema movies.graphql --out generated/ --watch
package main

func main() {
	Execute()
}
