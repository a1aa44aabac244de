package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/seacorridor/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services. Object fields
// resolve through the json tags of the domain types.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	observationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Observation",
		Fields: graphql.Fields{
			"individual_id": &graphql.Field{Type: graphql.Int},
			"group_id":      &graphql.Field{Type: graphql.Int},
			"role":          &graphql.Field{Type: graphql.String},
			"location":      &graphql.Field{Type: geoPointType},
		},
	})

	individualType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Individual",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.Int},
			"group_id":   &graphql.Field{Type: graphql.Int},
			"species":    &graphql.Field{Type: graphql.String},
			"photo":      &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	circleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Circle",
		Fields: graphql.Fields{
			"center":   &graphql.Field{Type: geoPointType},
			"radius_m": &graphql.Field{Type: graphql.Float},
		},
	})

	routeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Route",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"group_id":    &graphql.Field{Type: graphql.Int},
			"points":      &graphql.Field{Type: graphql.NewList(geoPointType)},
			"origin":      &graphql.Field{Type: circleType},
			"destination": &graphql.Field{Type: circleType},
			"polyline":    &graphql.Field{Type: graphql.String},
		},
	})

	corridorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Corridor",
		Fields: graphql.Fields{
			"route_id": &graphql.Field{Type: graphql.String},
			"group_id": &graphql.Field{Type: graphql.Int},
			"radius_m": &graphql.Field{Type: graphql.Float},
			"boundary": &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	overlapType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Overlap",
		Fields: graphql.Fields{
			"group_a": &graphql.Field{Type: graphql.Int},
			"group_b": &graphql.Field{Type: graphql.Int},
			"polygon": &graphql.Field{Type: graphql.NewList(geoPointType)},
		},
	})

	failureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GroupFailure",
		Fields: graphql.Fields{
			"group_id": &graphql.Field{Type: graphql.Int},
			"kind":     &graphql.Field{Type: graphql.String},
			"reason":   &graphql.Field{Type: graphql.String},
		},
	})

	runType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Run",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"width_km":    &graphql.Field{Type: graphql.Float},
			"started_at":  &graphql.Field{Type: graphql.DateTime},
			"finished_at": &graphql.Field{Type: graphql.DateTime},
			"routes":      &graphql.Field{Type: graphql.NewList(routeType)},
			"corridors":   &graphql.Field{Type: graphql.NewList(corridorType)},
			"overlaps":    &graphql.Field{Type: graphql.NewList(overlapType)},
			"failures":    &graphql.Field{Type: graphql.NewList(failureType)},
		},
	})

	runSummaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RunSummary",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"width_km":    &graphql.Field{Type: graphql.Float},
			"started_at":  &graphql.Field{Type: graphql.DateTime},
			"finished_at": &graphql.Field{Type: graphql.DateTime},
			"corridors":   &graphql.Field{Type: graphql.Int},
			"overlaps":    &graphql.Field{Type: graphql.Int},
			"failures":    &graphql.Field{Type: graphql.Int},
		},
	})

	runView := func(r *domain.RunResult, err error) (any, error) {
		if err != nil {
			return nil, err
		}
		return newRunView(r), nil
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"groups": &graphql.Field{
				Type:        graphql.NewList(graphql.Int),
				Description: "Ids of all groups with individuals",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Observations.ListGroups(p.Context)
				},
			},
			"observations": &graphql.Field{
				Type:        graphql.NewList(observationType),
				Description: "Observations of a group",
				Args: graphql.FieldConfigArgument{
					"group_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Observations.GroupObservations(p.Context, int64(p.Args["group_id"].(int)))
				},
			},
			"individual": &graphql.Field{
				Type:        individualType,
				Description: "Get an individual by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Observations.GetIndividual(p.Context, int64(p.Args["id"].(int)))
				},
			},
			"individuals": &graphql.Field{
				Type:        graphql.NewList(individualType),
				Description: "Members of a group",
				Args: graphql.FieldConfigArgument{
					"group_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Observations.ListIndividuals(p.Context, int64(p.Args["group_id"].(int)))
				},
			},
			"runs": &graphql.Field{
				Type:        graphql.NewList(runSummaryType),
				Description: "Retained runs, newest first",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return deps.Runs.List(), nil
				},
			},
			"run": &graphql.Field{
				Type:        runType,
				Description: "Get a retained run by id",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return runView(deps.Runs.Get(p.Args["id"].(string)))
				},
			},
			"latestRun": &graphql.Field{
				Type:        runType,
				Description: "The most recent run",
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return runView(deps.Runs.Latest())
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"startRun": &graphql.Field{
				Type:        runType,
				Description: "Run the corridor pipeline for every group",
				Args: graphql.FieldConfigArgument{
					"width_km":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"sample_count": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					req := domain.RunRequest{
						WidthKm:     p.Args["width_km"].(float64),
						SampleCount: p.Args["sample_count"].(int),
					}
					if err := validate.Struct(req); err != nil {
						return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
					}
					return runView(deps.Runs.Start(p.Context, req))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string         `json:"query"`
		OperationName string         `json:"operationName"`
		Variables     map[string]any `json:"variables"`
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
