package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/calendar"
	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/notification"
	"github.com/womanacademy/renluyen/core/student"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")

	errObjNotFoundInCtx = errors.New("object not found in echo.Context")

	invalidDataText = "invalid data"

	// notFoundErrors are answered with a 404
	notFoundErrors = []error{
		evaluation.ErrNotFound,
		student.ErrNotFound,
		notification.ErrNotFound,
		chat.ErrConversationNotFound,
		calendar.ErrNotFound,
	}
)

func isNotFound(err error) bool {
	for _, nf := range notFoundErrors {
		if err == nf {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		body := echo.Map{"success": false}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				body["error"] = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			body["error"] = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			body["error"] = invalidDataText
			body["fields"] = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				body["fields"] = fldErrs
			}
			msg := origErr.Error()
			if msg == "" {
				msg = invalidDataText
			}
			code = http.StatusBadRequest
			body["error"] = msg
		default:
			if isNotFound(cause) {
				code = http.StatusNotFound
				body["error"] = cause.Error()
				break
			}

			// any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			body["error"] = msg
			if ctx.Echo().Debug {
				body["detail"] = err.Error()
			}

			actor, _ := getContextActor(ctx)
			logger.Error(msg, errors.Wrap(err, msg), actor, map[string]interface{}{
				"method": ctx.Request().Method,
				"path":   ctx.Path(),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
