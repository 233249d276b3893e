package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the charge-site service.
// Resolvers only ever return public records.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	chargeSiteType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ChargeSite",
		Description: "A charge site as shown on the map. Coordinates may be obfuscated.",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user_id":           &graphql.Field{Type: graphql.Int},
			"latitude":          &graphql.Field{Type: graphql.Float},
			"longitude":         &graphql.Field{Type: graphql.Float},
			"obfuscated_status": &graphql.Field{Type: graphql.Boolean},
			"reserved_status":   &graphql.Field{Type: graphql.Boolean},
			"private_status":    &graphql.Field{Type: graphql.Boolean},
			"rate_of_charge":    &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"chargeSitesInRegion": &graphql.Field{
				Type:        graphql.NewList(chargeSiteType),
				Description: "Sites that may lie in the viewport lat/lon ± latd/lond",
				Args: graphql.FieldConfigArgument{
					"lat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"latd": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lond": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					vp := domain.Viewport{
						Center:         domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)},
						LatitudeDelta:  p.Args["latd"].(float64),
						LongitudeDelta: p.Args["lond"].(float64),
					}
					sites, err := deps.Sites.QueryRegion(p.Context, vp)
					if err != nil {
						return nil, err
					}
					return domain.PublicList(sites), nil
				},
			},
			"chargeSite": &graphql.Field{
				Type:        chargeSiteType,
				Description: "Get a charge site by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					site, err := deps.Sites.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					pub := site.Public()
					return &pub, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
