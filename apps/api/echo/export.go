package echoapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/export"
)

var errEvaluationIDRequired = core.NewValidationError(
	errors.New("missing evaluation ID"),
	core.FieldError{Field: "evaluationId", Error: "this field is required"},
)

type exportApi struct {
	svc     *export.Service
	evalSvc *evaluation.Service
}

func registerExportAPI(g *echo.Group, svc *export.Service, evalSvc *evaluation.Service) {
	api := exportApi{svc: svc, evalSvc: evalSvc}

	eg := g.Group("/export")
	eg.GET("/csv", api.report, teacherMiddleware())
	eg.POST("/csv", api.custom, teacherMiddleware())
	eg.GET("/pdf", api.downloadPDF)
	eg.POST("/pdf", api.generatePDF)
}

type GeneratePDFRequest struct {
	EvaluationID string `json:"evaluationId"`
}

// Handlers

// report serves ?format=detailed (default)|summary|xlsx filtered by semester, academicYear, classId & status.
func (api *exportApi) report(ctx echo.Context) error {
	filter := export.ReportFilter{
		Semester:     ctx.QueryParam("semester"),
		AcademicYear: ctx.QueryParam("academicYear"),
		ClassID:      ctx.QueryParam("classId"),
		Status:       ctx.QueryParam("status"),
	}
	reqCtx := ctx.Request().Context()

	var file export.File
	var err error
	switch ctx.QueryParam("format") {
	case "summary":
		file, err = api.svc.SummaryCSV(reqCtx, filter)
	case "xlsx":
		file, err = api.svc.DetailedXLSX(reqCtx, filter)
	default:
		file, err = api.svc.DetailedCSV(reqCtx, filter)
	}
	if err != nil {
		return errors.Wrap(err, "exporting report")
	}
	return attachment(ctx, file)
}

func (api *exportApi) custom(ctx echo.Context) error {
	var data export.CustomExport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CustomExport")
	}

	file, err := api.svc.CustomCSV(data)
	if err != nil {
		return errors.Wrap(err, "exporting custom csv")
	}
	return attachment(ctx, file)
}

func (api *exportApi) downloadPDF(ctx echo.Context) error {
	id := core.CleanString(ctx.QueryParam("id"))
	if id == "" {
		return errEvaluationIDRequired
	}
	if err := api.checkAccess(ctx, id); err != nil {
		return err
	}

	file, err := api.svc.EvaluationPDF(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "rendering evaluation pdf")
	}
	return attachment(ctx, file)
}

// generatePDF renders the sheet ahead of the download and tells where to fetch it.
func (api *exportApi) generatePDF(ctx echo.Context) error {
	var data GeneratePDFRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GeneratePDFRequest")
	}
	id := core.CleanString(data.EvaluationID)
	if id == "" {
		return errEvaluationIDRequired
	}
	if err := api.checkAccess(ctx, id); err != nil {
		return err
	}

	file, err := api.svc.EvaluationPDF(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "rendering evaluation pdf")
	}
	return success(ctx, http.StatusOK, echo.Map{
		"pdf": echo.Map{
			"filename":    file.Name,
			"size":        len(file.Data),
			"generatedAt": export.NowFunc().UTC().Format(time.RFC3339),
		},
		"downloadUrl": "/api/export/pdf?id=" + url.QueryEscape(id),
	})
}

// checkAccess confines students to their own evaluations.
func (api *exportApi) checkAccess(ctx echo.Context, id string) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if actor.IsTeacher() {
		return nil
	}

	ev, err := api.evalSvc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding evaluation by ID")
	}
	if ev.UserID != actor.ID {
		return errHttpNotFound
	}
	return nil
}
