package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
)

type grantApi struct {
	svc *grant.Service
}

func registerGrantAPI(g *echo.Group, svc *grant.Service) {
	api := grantApi{svc: svc}

	gg := g.Group("/grants")
	gg.GET("", api.list)
	gg.GET("/export", api.export) // before /:id so "export" never binds as an id
	gg.GET("/:id", api.retrieve)

	g.GET("/departments", api.departments)
	g.GET("/sponsors", api.sponsors)
}

// Handlers

func (api *grantApi) list(ctx echo.Context) error {
	var req grantListRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	page, err := api.svc.List(ctx.Request().Context(), &req.Filter, req.Page)
	if err != nil {
		return errors.Wrap(err, "listing grants")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *grantApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "must be an integer"})
	}

	g, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == grant.ErrNotFound {
			return core.NewNotFoundError("grant", id)
		}
		return errors.Wrap(err, "fetching grant")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *grantApi) export(ctx echo.Context) error {
	var req grantListRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	items, err := api.svc.Export(ctx.Request().Context(), &req.Filter)
	if err != nil {
		return errors.Wrap(err, "exporting grants")
	}

	if req.Format == grant.FormatJSON {
		ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="grants-export.json"`)
		return ctx.JSON(http.StatusOK, items)
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="grants-export.csv"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", grant.RenderCSV(items))
}

func (api *grantApi) departments(ctx echo.Context) error {
	depts, err := api.svc.Departments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing departments")
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *grantApi) sponsors(ctx echo.Context) error {
	sponsors, err := api.svc.Sponsors(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing sponsors")
	}
	return ctx.JSON(http.StatusOK, sponsors)
}

// health

type healthApi struct {
	db      Pinger
	appName string
}

func registerHealthAPI(g *echo.Group, db Pinger, appName string) {
	api := healthApi{db: db, appName: appName}
	g.GET("/health", api.check)
}

// check reports readiness; a failed store ping degrades it to 503.
func (api *healthApi) check(ctx echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if err := api.db.PingContext(ctx.Request().Context()); err != nil {
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, echo.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   api.appName,
	})
}
