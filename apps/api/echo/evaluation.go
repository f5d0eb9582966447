package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/evaluation"
)

type evaluationApi struct {
	svc *evaluation.Service
}

func registerEvaluationAPI(g *echo.Group, svc *evaluation.Service) {
	api := evaluationApi{svc: svc}

	eg := g.Group("/evaluations")
	eg.GET("", api.query)
	eg.POST("", api.upsert)

	// detail endpoints
	dg := eg.Group("/:id", api.ownerOrTeacherMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/submit", api.submit)
}

// Handlers

// query returns one evaluation when the full (userId, semester, academicYear) key is given,
// the matching list otherwise. Students only ever see their own evaluations.
func (api *evaluationApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := evaluation.QueryFilter{
		UserID:       ctx.QueryParam("userId"),
		Semester:     ctx.QueryParam("semester"),
		AcademicYear: ctx.QueryParam("academicYear"),
		Statuses:     ctx.QueryParams()["status"],
	}
	if actor.IsStudent() {
		filter.UserID = actor.ID
	}

	if filter.UserID != "" && filter.Semester != "" && filter.AcademicYear != "" {
		ev, err := api.svc.Get(ctx.Request().Context(), filter.UserID, filter.Semester, filter.AcademicYear)
		if err != nil {
			return errors.Wrap(err, "getting evaluation")
		}
		return success(ctx, http.StatusOK, echo.Map{"evaluation": ev})
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Orderings = ordering.Orderings

	evals, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying evaluations")
	}
	if evals == nil {
		evals = []evaluation.Evaluation{}
	}
	return success(ctx, http.StatusOK, echo.Map{"evaluations": evals, "total": len(evals)})
}

func (api *evaluationApi) upsert(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data evaluation.UpsertEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertEvaluation")
	}
	if actor.IsStudent() {
		if data.UserID != "" && data.UserID != actor.ID {
			return errHttpForbidden
		}
		data.UserID = actor.ID
	}
	return api.save(ctx, data)
}

func (api *evaluationApi) save(ctx echo.Context, data evaluation.UpsertEvaluation) error {
	ev, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "upserting evaluation")
	}
	return success(ctx, http.StatusOK, echo.Map{
		"id":             ev.ID,
		"totalSelfScore": ev.TotalSelfScore,
		"evaluation":     ev,
		"message":        "Evaluation saved successfully",
	})
}

func (api *evaluationApi) retrieve(ctx echo.Context) error {
	ev, ok := ctx.Get("object").(evaluation.Evaluation)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return success(ctx, http.StatusOK, echo.Map{"evaluation": ev})
}

// update saves the sections of an existing evaluation; its key cannot change.
func (api *evaluationApi) update(ctx echo.Context) error {
	ev, ok := ctx.Get("object").(evaluation.Evaluation)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	var data evaluation.UpsertEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertEvaluation")
	}
	data.UserID = ev.UserID
	data.Semester = ev.Semester
	data.AcademicYear = ev.AcademicYear
	return api.save(ctx, data)
}

func (api *evaluationApi) destroy(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	ev, ok := ctx.Get("object").(evaluation.Evaluation)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ev.ID, actor.IsStudent()); err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	return success(ctx, http.StatusOK, nil)
}

func (api *evaluationApi) submit(ctx echo.Context) error {
	ev, ok := ctx.Get("object").(evaluation.Evaluation)
	if !ok {
		return errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}

	ev, err := api.svc.Submit(ctx.Request().Context(), ev.ID)
	if err != nil {
		return errors.Wrap(err, "submitting evaluation")
	}
	return success(ctx, http.StatusOK, echo.Map{"evaluation": ev})
}

// ownerOrTeacherMiddleware loads the evaluation into the context.
// Students get a 404 for evaluations they do not own.
func (api *evaluationApi) ownerOrTeacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := getContextActor(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context actor")
		}

		ev, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == evaluation.ErrNotFound {
				return errHttpNotFound
			}
			return errors.Wrap(err, "finding evaluation by ID")
		}
		if actor.IsStudent() && ev.UserID != actor.ID {
			return errHttpNotFound
		}
		ctx.Set("object", ev)
		return next(ctx)
	}
}
