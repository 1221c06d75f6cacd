package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core/ingest"
)

type ingestApi struct {
	svc *ingest.Service
}

func registerIngestAPI(g *echo.Group, svc *ingest.Service) {
	api := ingestApi{svc: svc}
	g.POST("/ingest/grants", api.ingestGrants)
}

// ingestGrants reads the raw CSV body and runs it through the pipeline.
// Row failures land in the report; only an unusable document fails the
// request.
func (api *ingestApi) ingestGrants(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}

	report, err := api.svc.IngestCSV(ctx.Request().Context(), string(body))
	if err != nil {
		return errors.Wrap(err, "ingesting CSV")
	}
	return ctx.JSON(http.StatusOK, report)
}
