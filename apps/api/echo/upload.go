package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/upload"
)

const uploadFormField = "file"

type uploadApi struct {
	svc *upload.Service
}

func registerUploadAPI(g *echo.Group, svc *upload.Service) {
	api := uploadApi{svc: svc}

	ug := g.Group("/upload")
	ug.GET("", api.info)
	ug.POST("", api.upload)
}

type UploadResponse struct {
	Success bool `json:"success"`
	upload.Result
}

// Handlers

func (api *uploadApi) info(ctx echo.Context) error {
	return success(ctx, http.StatusOK, echo.Map{
		"message":        "Upload endpoint - use POST to upload files",
		"supportedTypes": upload.SupportedTypes,
		"maxSize":        api.svc.MaxSizeLabel(),
	})
}

func (api *uploadApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile(uploadFormField)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return core.NewValidationError(upload.ErrNoFile, core.FieldError{Field: uploadFormField, Error: upload.ErrNoFile.Error()})
		}
		return errors.Wrap(err, "reading multipart file")
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening multipart file")
	}
	defer func() { _ = f.Close() }()

	res, err := api.svc.Upload(ctx.Request().Context(), upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	})
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}
	return ctx.JSON(http.StatusOK, UploadResponse{Success: true, Result: res})
}
