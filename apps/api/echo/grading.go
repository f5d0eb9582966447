package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/evaluation"
)

type gradingApi struct {
	svc *evaluation.GradingService
}

func registerGradingAPI(g *echo.Group, svc *evaluation.GradingService) {
	api := gradingApi{svc: svc}

	gg := g.Group("/grading", teacherMiddleware())
	gg.GET("", api.query)
	gg.POST("", api.grade)
}

func (api *gradingApi) query(ctx echo.Context) error {
	evals, err := api.svc.Query(ctx.Request().Context(), evaluation.GradingFilter{
		Status:   ctx.QueryParam("status"),
		Semester: ctx.QueryParam("semester"),
		ClassID:  ctx.QueryParam("classId"),
	})
	if err != nil {
		return errors.Wrap(err, "querying gradable evaluations")
	}
	return success(ctx, http.StatusOK, echo.Map{"evaluations": evals, "total": len(evals)})
}

func (api *gradingApi) grade(ctx echo.Context) error {
	var data evaluation.GradeEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeEvaluation")
	}

	ev, err := api.svc.Grade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "grading evaluation")
	}
	return success(ctx, http.StatusOK, echo.Map{"evaluation": ev})
}
