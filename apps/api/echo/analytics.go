package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/chart"
)

type analyticsApi struct {
	charts *chart.Store
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func registerAnalyticsAPI(g *echo.Group, charts *chart.Store) {
	api := analyticsApi{charts: charts}

	ag := g.Group("/analytics")
	ag.POST("/attendance", api.save(chart.Attendance, "Attendance saved"))
	ag.GET("/attendance", api.get(chart.Attendance))
	ag.POST("/performance", api.save(chart.Performance, "Performance saved"))
	ag.GET("/performance", api.get(chart.Performance))
}

// Handlers

func (api *analyticsApi) save(series, msg string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var points []chart.Point
		if err := ctx.Bind(&points); err != nil {
			return errors.Wrap(err, "binding to []chart.Point")
		}

		var fldErrs []core.FieldError
		for i, p := range points {
			if err := ctx.Validate(p); err != nil {
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					return err
				}
				for _, f := range vErr.Fields {
					fldErrs = append(fldErrs, core.FieldError{Field: fmt.Sprintf("%d.%s", i, f.Field), Error: f.Error})
				}
			}
		}
		if len(fldErrs) > 0 {
			return core.NewValidationError(errors.New("invalid data points"), fldErrs...)
		}

		if err := api.charts.Save(series, points); err != nil {
			return errors.Wrap(err, "saving chart series")
		}
		return ctx.JSON(http.StatusOK, statusResponse{Status: "success", Message: msg})
	}
}

func (api *analyticsApi) get(series string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		points, err := api.charts.Get(series)
		if err != nil {
			return errors.Wrap(err, "getting chart series")
		}
		return ctx.JSON(http.StatusOK, points)
	}
}
