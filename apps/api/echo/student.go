package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core/export"
	"github.com/womanacademy/renluyen/core/student"
)

type studentApi struct {
	svc       *student.Service
	exportSvc *export.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service, exportSvc *export.Service) {
	api := studentApi{svc: svc, exportSvc: exportSvc}

	sg := g.Group("/students", teacherMiddleware())
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/export", api.export)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.Filter(ctx.Request().Context(), student.QueryFilter{
		ClassID: ctx.QueryParam("classId"),
		Search:  ctx.QueryParam("search"),
	})
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return success(ctx, http.StatusOK, echo.Map{"students": students, "total": len(students)})
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	st, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return success(ctx, http.StatusCreated, echo.Map{"student": st})
}

func (api *studentApi) export(ctx echo.Context) error {
	file, err := api.exportSvc.StudentsCSV(ctx.Request().Context(), export.StudentFilter{
		ClassID:      ctx.QueryParam("classId"),
		Search:       ctx.QueryParam("search"),
		Semester:     ctx.QueryParam("semester"),
		AcademicYear: ctx.QueryParam("academicYear"),
	})
	if err != nil {
		return errors.Wrap(err, "exporting students")
	}
	return attachment(ctx, file)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return success(ctx, http.StatusOK, echo.Map{"student": st})
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	st, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return success(ctx, http.StatusOK, echo.Map{"student": st})
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return success(ctx, http.StatusOK, nil)
}
