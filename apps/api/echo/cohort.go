package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core/cohort"
	"github.com/trezcool/masomo-insights/core/table"
)

type (
	CohortService interface {
		Upload(ctx context.Context, filename string, tbl table.Table) (cohort.UploadResult, error)
		UploadInsights(ctx context.Context, filename string, tbl table.Table) (cohort.InsightsResult, error)
		Summary() (cohort.Summary, error)
		ChartsData() []cohort.Record
		Insight(studentID string) (cohort.Insight, error)
	}

	cohortApi struct {
		svc CohortService
	}
)

func registerCohortAPI(g *echo.Group, svc CohortService, scorer Scorer) {
	api := cohortApi{svc: svc}

	g.POST("/upload-data", api.upload)

	dg := g.Group("/dashboard")
	dg.GET("/summary", api.summary)
	dg.GET("/charts-data", api.chartsData)

	sg := g.Group("/students")
	sg.POST("/insights", api.uploadInsights, requireModel(scorer))
	sg.GET("/:student_id/insights", api.insight)
}

// Handlers

func (api *cohortApi) upload(ctx echo.Context) error {
	filename, tbl, err := readUpload(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Upload(ctx.Request().Context(), filename, tbl)
	if err != nil {
		return errors.Wrap(err, "uploading cohort")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cohortApi) summary(ctx echo.Context) error {
	res, err := api.svc.Summary()
	if err != nil {
		return errors.Wrap(err, "summarizing cohort")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cohortApi) chartsData(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.ChartsData())
}

func (api *cohortApi) uploadInsights(ctx echo.Context) error {
	filename, tbl, err := readUpload(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.UploadInsights(ctx.Request().Context(), filename, tbl)
	if err != nil {
		return errors.Wrap(err, "uploading insights")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cohortApi) insight(ctx echo.Context) error {
	res, err := api.svc.Insight(ctx.Param("student_id"))
	if err != nil {
		return errors.Wrap(err, "getting student insight")
	}
	return ctx.JSON(http.StatusOK, res)
}
