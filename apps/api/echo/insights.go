package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core/insights"
)

type insightsApi struct {
	svc *insights.Service
}

func registerInsightsAPI(g *echo.Group, svc *insights.Service) {
	api := insightsApi{svc: svc}

	g.GET("/insights", api.insights)
	g.GET("/faculty/leaderboard", api.leaderboard)

	mg := g.Group("/metrics")
	mg.GET("/summary", api.summary)
	mg.GET("/status-breakdown", api.statusBreakdown)
	mg.GET("/timeseries", api.timeseries)
}

// Handlers

func (api *insightsApi) insights(ctx echo.Context) error {
	var req insightsRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	payload, err := api.svc.Insights(ctx.Request().Context(), req.Params)
	if err != nil {
		return errors.Wrap(err, "computing insights")
	}
	return ctx.JSON(http.StatusOK, payload)
}

func (api *insightsApi) leaderboard(ctx echo.Context) error {
	var req leaderboardRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	leaderboard, err := api.svc.Leaderboard(ctx.Request().Context(), req.DepartmentID)
	if err != nil {
		return errors.Wrap(err, "ranking faculty")
	}
	if leaderboard == nil {
		leaderboard = []insights.LeaderboardEntry{}
	}
	return ctx.JSON(http.StatusOK, leaderboard)
}

func (api *insightsApi) summary(ctx echo.Context) error {
	summary, err := api.svc.MetricsSummary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing metrics summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *insightsApi) statusBreakdown(ctx echo.Context) error {
	var req insightsRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	counts, err := api.svc.StatusBreakdown(ctx.Request().Context(), req.Params)
	if err != nil {
		return errors.Wrap(err, "computing status breakdown")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *insightsApi) timeseries(ctx echo.Context) error {
	var req insightsRequest
	if err := req.Bind(ctx); err != nil {
		return err
	}

	series, err := api.svc.TimeSeries(ctx.Request().Context(), req.Params)
	if err != nil {
		return errors.Wrap(err, "computing timeseries")
	}
	return ctx.JSON(http.StatusOK, series)
}
