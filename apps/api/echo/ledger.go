package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core/ledger"
	"github.com/trezcool/masomo-insights/core/table"
)

type (
	LedgerService interface {
		Get(ctx context.Context, studentNumber string) ([]ledger.Record, error)
		Import(ctx context.Context, studentNumber string, tbl table.Table) ([]ledger.Record, error)
	}

	ledgerApi struct {
		svc LedgerService
	}

	ledgerResponse struct {
		Message string          `json:"message"`
		Data    []ledger.Record `json:"data"`
		Rows    int             `json:"rows,omitempty"`
		Columns int             `json:"columns,omitempty"`
	}
)

func registerLedgerAPI(g *echo.Group, svc LedgerService) {
	api := ledgerApi{svc: svc}

	lg := g.Group("/ledgers")
	lg.POST("", api.upload)
	lg.GET("/:student_number", api.retrieve)
}

// Handlers

func (api *ledgerApi) upload(ctx echo.Context) error {
	studentNumber := ctx.FormValue("student_number")
	_, tbl, err := readUpload(ctx)
	if err != nil {
		return err
	}

	records, err := api.svc.Import(ctx.Request().Context(), studentNumber, tbl)
	if err != nil {
		return errors.Wrap(err, "importing ledger")
	}
	return ctx.JSON(http.StatusOK, ledgerResponse{
		Message: fmt.Sprintf("Upload successful. %d rows processed for student %s.", len(records), studentNumber),
		Data:    records,
		Rows:    len(records),
		Columns: len(ledger.SnapshotColumns),
	})
}

func (api *ledgerApi) retrieve(ctx echo.Context) error {
	studentNumber := ctx.Param("student_number")
	records, err := api.svc.Get(ctx.Request().Context(), studentNumber)
	if err != nil {
		return errors.Wrap(err, "getting ledger")
	}

	msg := "Loaded data"
	if len(records) == 0 {
		msg = "No data found"
	}
	return ctx.JSON(http.StatusOK, ledgerResponse{
		Message: fmt.Sprintf("%s for student %s.", msg, studentNumber),
		Data:    records,
	})
}
