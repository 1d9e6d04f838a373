package gql

import (
	"github.com/caesium-cloud/lgflow/api/gql/schema"
	"github.com/caesium-cloud/lgflow/api/rest/controller/request"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/labstack/echo/v4"
)

// Handler wraps the GraphQL schema and makes it injectable
// into the echo HTTP framework. The caller's identity headers
// are carried into resolvers through the request context.
func Handler() echo.HandlerFunc {
	schema, err := graphql.NewSchema(schema.New())
	if err != nil {
		panic(err)
	}

	h := handler.New(
		&handler.Config{
			Schema:   &schema,
			Pretty:   true,
			GraphiQL: true,
		},
	)

	return func(c echo.Context) error {
		ctx := role.WithContext(c.Request().Context(), request.Actor(c))
		h.ContextHandler(ctx, c.Response(), c.Request())
		return nil
	}
}
