package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/scoring"
)

type (
	Scorer interface {
		Available() bool
		PredictOne(f scoring.Features) (float64, error)
	}

	predictApi struct {
		scorer Scorer
		rules  core.RoadmapConfig
	}
)

func registerPredictAPI(g *echo.Group, scorer Scorer, rules core.RoadmapConfig) {
	api := predictApi{scorer: scorer, rules: rules}
	g.POST("/predict", api.predict, requireModel(scorer))
}

// Handlers

func (api *predictApi) predict(ctx echo.Context) error {
	var in scoring.Input
	if err := ctx.Bind(&in); err != nil {
		return errors.Wrap(err, "binding to scoring.Input")
	}
	if err := ctx.Validate(in); err != nil {
		return err
	}

	features := in.Features()
	pred, err := api.scorer.PredictOne(features)
	if err != nil {
		return errors.Wrap(err, "predicting score")
	}
	return ctx.JSON(http.StatusOK, scoring.Advice(features, pred, api.rules))
}
