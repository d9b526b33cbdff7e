package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-insights/core"
)

type errorResponse struct {
	Kind        string            `json:"kind,omitempty"`
	Error       string            `json:"error"`
	Missing     []string          `json:"missing,omitempty"`
	Unexpected  []string          `json:"unexpected,omitempty"`
	Misordered  bool              `json:"misordered,omitempty"`
	Suggestions map[string]string `json:"suggestions,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// statusCode maps a domain error kind to its HTTP status.
func statusCode(kind string) int {
	switch kind {
	case core.KindSchema, core.KindUnsupportedFormat, core.KindDecode, core.KindValidation, core.KindUnknownDepartment:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp errorResponse

		var (
			httpErr   *echo.HTTPError
			schemaErr *core.SchemaError
			valErr    *core.ValidationError
			kinded    core.Kinded
		)
		switch {
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			resp.Error = fmt.Sprint(httpErr.Message)
		case errors.As(err, &schemaErr):
			code = http.StatusBadRequest
			resp = errorResponse{
				Kind:        schemaErr.Kind(),
				Error:       schemaErr.Error(),
				Missing:     schemaErr.Missing,
				Unexpected:  schemaErr.Unexpected,
				Misordered:  schemaErr.Misordered,
				Suggestions: schemaErr.Suggestions,
			}
		case errors.As(err, &valErr):
			code = http.StatusBadRequest
			resp = errorResponse{Kind: valErr.Kind(), Error: valErr.Error()}
			if valErr.Fields != nil {
				resp.Fields = make(map[string]string, len(valErr.Fields))
				for _, fErr := range valErr.Fields {
					resp.Fields[fErr.Field] = fErr.Error
				}
			}
		case errors.As(err, &kinded):
			code = statusCode(kinded.Kind())
			resp = errorResponse{Kind: kinded.Kind(), Error: kinded.Error()}
			if code == http.StatusInternalServerError {
				logger.Error(kinded.Error(), err)
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			resp.Error = msg
			logger.Error(msg, errors.Wrap(err, msg))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			resp.Error = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
