package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-insights/core"
)

// requireModel rejects requests that need predictions while no scoring model is loaded.
func requireModel(scorer interface{ Available() bool }) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if scorer == nil || !scorer.Available() {
				return &core.ModelUnavailableError{}
			}
			return next(ctx)
		}
	}
}
