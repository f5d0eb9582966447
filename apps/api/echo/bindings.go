package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/export"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-other` (a leading "-" means descending).
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func success(ctx echo.Context, code int, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["success"] = true
	return ctx.JSON(code, data)
}

// attachment sends a rendered export as a download.
func attachment(ctx echo.Context, f export.File) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Name))
	return ctx.Blob(http.StatusOK, f.ContentType, f.Data)
}

func queryBool(ctx echo.Context, name string) bool {
	v := strings.ToLower(ctx.QueryParam(name))
	return v == "true" || v == "1"
}
