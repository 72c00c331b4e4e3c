// Package graphql exposes the restaurant operations as a GraphQL schema.
package graphql

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/sngm3741/restaurant-graph/api/internal/common/logger"
	"github.com/sngm3741/restaurant-graph/api/internal/restaurant/application"
)

//go:embed schema.graphql
var schemaSDL string

// SchemaSDL returns the schema document served by the gateway.
func SchemaSDL() string {
	return schemaSDL
}

// NewSchema parses the schema against the resolver tree. Fields resolve one
// at a time so that lazy enrichments never run concurrently within a request.
func NewSchema(service application.RestaurantService, log logger.Logger) (*gql.Schema, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return gql.ParseSchema(
		schemaSDL,
		NewResolver(service),
		gql.MaxParallelism(1),
		gql.Logger(panicLogger{log: log}),
	)
}

// NewHandler serves GraphQL-over-HTTP POST requests.
func NewHandler(schema *gql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}

type panicLogger struct {
	log logger.Logger
}

func (p panicLogger) LogPanic(_ context.Context, value interface{}) {
	p.log.Error("graphql resolver panic", map[string]interface{}{
		"panic": fmt.Sprint(value),
	})
}
