package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/calendar"
)

var errEventIDRequired = core.NewValidationError(
	errors.New("event ID required"),
	core.FieldError{Field: "id", Error: "this field is required"},
)

type calendarApi struct {
	svc *calendar.Service
}

func registerCalendarAPI(g *echo.Group, svc *calendar.Service) {
	api := calendarApi{svc: svc}

	cg := g.Group("/calendar")
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.PUT("", api.update)
	cg.DELETE("", api.destroy)
}

type UpdateEventRequest struct {
	ID string `json:"id"`
	calendar.UpdateEvent
}

// Handlers

func (api *calendarApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := calendar.QueryFilter{
		UserID:    ctx.QueryParam("userId"),
		StartDate: ctx.QueryParam("startDate"),
		EndDate:   ctx.QueryParam("endDate"),
	}
	if actor.IsStudent() {
		filter.UserID = actor.ID
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []calendar.Event{}
	}
	return success(ctx, http.StatusOK, echo.Map{"events": events})
}

func (api *calendarApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data calendar.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}

	evt, err := api.svc.Create(ctx.Request().Context(), actor.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return success(ctx, http.StatusCreated, echo.Map{"event": evt})
}

func (api *calendarApi) update(ctx echo.Context) error {
	var data UpdateEventRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEventRequest")
	}
	id := core.CleanString(data.ID)
	if id == "" {
		return errEventIDRequired
	}
	if err := api.checkOwner(ctx, id); err != nil {
		return err
	}

	evt, err := api.svc.Update(ctx.Request().Context(), id, data.UpdateEvent)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return success(ctx, http.StatusOK, echo.Map{"event": evt})
}

func (api *calendarApi) destroy(ctx echo.Context) error {
	id := core.CleanString(ctx.QueryParam("id"))
	if id == "" {
		return errEventIDRequired
	}
	if err := api.checkOwner(ctx, id); err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return success(ctx, http.StatusOK, nil)
}

// checkOwner lets teachers and the creator modify an event.
// Events the actor cannot see are reported as missing.
func (api *calendarApi) checkOwner(ctx echo.Context, id string) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	evt, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding event by ID")
	}
	if actor.IsTeacher() || evt.CreatedBy == actor.ID {
		return nil
	}
	if evt.VisibleTo(actor.ID) {
		return errHttpForbidden
	}
	return errHttpNotFound
}
