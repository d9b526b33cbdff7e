package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/table"
)

const uploadField = "file"

var errFileRequired = core.NewValidationError(
	errors.New("a file upload is required"),
	core.FieldError{Field: uploadField, Error: "this field is required"},
)

// readUpload decodes the spreadsheet uploaded in the multipart "file" field.
func readUpload(ctx echo.Context) (string, table.Table, error) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return "", table.Table{}, errFileRequired
	}
	f, err := fh.Open()
	if err != nil {
		return "", table.Table{}, errors.Wrap(err, "opening upload")
	}
	defer func() { _ = f.Close() }()

	tbl, err := table.Decode(fh.Filename, f)
	if err != nil {
		return "", table.Table{}, err
	}
	return fh.Filename, tbl, nil
}
