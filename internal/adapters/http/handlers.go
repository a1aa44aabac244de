package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/seacorridor/internal/adapters/render"
	"github.com/samirrijal/seacorridor/internal/core/domain"
	"github.com/samirrijal/seacorridor/internal/core/ports"
)

// routeView is a route with its encoded polyline.
type routeView struct {
	ID          string            `json:"id"`
	GroupID     int64             `json:"group_id"`
	Points      []domain.GeoPoint `json:"points"`
	Origin      domain.Circle     `json:"origin"`
	Destination domain.Circle     `json:"destination"`
	Polyline    string            `json:"polyline"`
}

// runView is the JSON shape of a run result.
type runView struct {
	ID         string                 `json:"id"`
	WidthKm    float64                `json:"width_km"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Routes     []routeView            `json:"routes"`
	Corridors  []domain.Corridor      `json:"corridors"`
	Overlaps   []domain.OverlapRegion `json:"overlaps"`
	Failures   []domain.GroupFailure  `json:"failures"`
}

func newRunView(r *domain.RunResult) runView {
	routes := make([]routeView, len(r.Routes))
	for i, route := range r.Routes {
		routes[i] = routeView{
			ID:          route.ID,
			GroupID:     route.GroupID,
			Points:      route.Points,
			Origin:      route.Origin,
			Destination: route.Destination,
			Polyline:    render.EncodePolyline(route.Points),
		}
	}
	return runView{
		ID:         r.ID,
		WidthKm:    r.WidthKm,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Routes:     routes,
		Corridors:  nonNil(r.Corridors),
		Overlaps:   nonNil(r.Overlaps),
		Failures:   nonNil(r.Failures),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// ---- groups and observations ----

// ListGroupsHandler returns the ids of all groups.
func ListGroupsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := deps.Observations.ListGroups(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, groups, 100, 1000))
	}
}

// GroupObservationsHandler returns the observations of one group.
func GroupObservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		obs, err := deps.Observations.GroupObservations(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		if len(obs) == 0 {
			return errNotFound(c, "group has no observations")
		}
		return c.JSON(obs)
	}
}

type observationInput struct {
	IndividualID int64    `json:"individual_id" validate:"required,gt=0"`
	Role         string   `json:"role" validate:"required,oneof=start finish"`
	Lat          *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon          *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// CreateObservationHandler records an observation of a known individual.
func CreateObservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in observationInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(in); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		obs := domain.Observation{
			IndividualID: in.IndividualID,
			Role:         domain.Role(in.Role),
			Location:     domain.GeoPoint{Lat: *in.Lat, Lon: *in.Lon},
		}
		if err := deps.Observations.Record(c.UserContext(), &obs); err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(obs)
	}
}

// ---- individuals ----

type individualInput struct {
	GroupID int64  `json:"group_id" validate:"required,gt=0"`
	Species string `json:"species" validate:"max=200"`
	Photo   string `json:"photo" validate:"max=255"`
}

// PutIndividualHandler creates the individual or replaces its fields.
func PutIndividualHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var in individualInput
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(in); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		ctx := c.UserContext()
		if _, err := deps.Observations.GetIndividual(ctx, id); errors.Is(err, domain.ErrNotFound) {
			ind := domain.Individual{ID: id, GroupID: in.GroupID, Species: in.Species, Photo: in.Photo}
			if err := deps.Observations.RegisterIndividual(ctx, &ind); err != nil {
				return errFromDomain(c, err)
			}
			return c.Status(fiber.StatusCreated).JSON(ind)
		} else if err != nil {
			return errFromDomain(c, err)
		}

		species, photo := in.Species, in.Photo
		if species == "" {
			species = domain.DefaultSpecies
		}
		if photo == "" {
			photo = domain.DefaultPhoto
		}
		ind, err := deps.Observations.UpdateIndividual(ctx, id, domain.IndividualUpdate{
			GroupID: &in.GroupID,
			Species: &species,
			Photo:   &photo,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		invalidatePopup(deps, id)
		return c.JSON(ind)
	}
}

type individualPatch struct {
	GroupID *int64  `json:"group_id" validate:"omitempty,gt=0"`
	Species *string `json:"species" validate:"omitempty,min=1,max=200"`
	Photo   *string `json:"photo" validate:"omitempty,max=255"`
}

// PatchIndividualHandler applies a partial update.
func PatchIndividualHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var in individualPatch
		if err := c.BodyParser(&in); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := validate.Struct(in); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		ind, err := deps.Observations.UpdateIndividual(c.UserContext(), id, domain.IndividualUpdate{
			GroupID: in.GroupID,
			Species: in.Species,
			Photo:   in.Photo,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		invalidatePopup(deps, id)
		return c.JSON(ind)
	}
}

// DeleteIndividualHandler removes an individual and its observations.
func DeleteIndividualHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Observations.DeleteIndividual(c.UserContext(), id); err != nil {
			return errFromDomain(c, err)
		}
		invalidatePopup(deps, id)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PopupHandler returns the marker popup HTML of an individual.
func PopupHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Popups == nil {
			return errUnavailable(c, "popups not configured")
		}
		id, err := paramID(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		ind, err := deps.Observations.GetIndividual(c.UserContext(), id)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(deps.Popups.Popup(ind))
	}
}

func invalidatePopup(deps *Dependencies, id int64) {
	if deps.Popups != nil {
		deps.Popups.Invalidate(id)
	}
}

// ---- runs ----

// StartRunHandler runs the pipeline synchronously and returns the result.
// With ?async=true the run is queued for the worker instead.
func StartRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req domain.RunRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if err := validate.Struct(req); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		if c.QueryBool("async") {
			if deps.Requests == nil {
				return errUnavailable(c, "run queue not configured")
			}
			if err := deps.Requests.RequestRun(c.UserContext(), &req); err != nil {
				return errFromDomain(c, err)
			}
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
		}

		result, err := deps.Runs.Start(c.UserContext(), req)
		if err != nil {
			return errFromDomain(c, err)
		}
		LoggerFromCtx(c.UserContext()).Info("run finished via api",
			"run_id", result.ID, "corridors", len(result.Corridors), "failures", len(result.Failures))
		c.Location("/v1/runs/" + result.ID)
		return c.Status(fiber.StatusCreated).JSON(newRunView(result))
	}
}

// ListRunsHandler returns summaries of retained runs, newest first.
func ListRunsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(paginate(c, deps.Runs.List(), 20, 100))
	}
}

// LatestRunHandler returns the most recent run.
func LatestRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := deps.Runs.Latest()
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(newRunView(result))
	}
}

// GetRunHandler returns a retained run by id.
func GetRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := deps.Runs.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(newRunView(result))
	}
}

// RenderRunHandler renders a run and all observation markers with sink.
func RenderRunHandler(deps *Dependencies, sink func(*Dependencies) ports.RenderSink) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s := sink(deps)
		if s == nil {
			return errUnavailable(c, "renderer not configured")
		}
		result, err := deps.Runs.Get(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		obs, err := deps.Observations.AllObservations(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		data, err := s.Render(c.UserContext(), result, obs)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, s.ContentType())
		return c.Send(data)
	}
}

func geoJSONSink(d *Dependencies) ports.RenderSink { return d.GeoJSON }
func kmlSink(d *Dependencies) ports.RenderSink     { return d.KML }
