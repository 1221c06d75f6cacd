package echoapi

import (
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/researchops/grantboard/core"
)

// machine-readable error codes carried in the error envelope
const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeDatabase   = "DATABASE_ERROR"
	codeInternal   = "INTERNAL_ERROR"
)

type (
	errorBody struct {
		Message    interface{}       `json:"message"`
		Code       string            `json:"code,omitempty"`
		StatusCode int               `json:"statusCode"`
		Fields     map[string]string `json:"fields,omitempty"`
		Timestamp  time.Time         `json:"timestamp"`
	}

	// errorResponse is the envelope every failed request renders.
	errorResponse struct {
		Error errorBody `json:"error"`
	}
)

func newErrorResponse(statusCode int, code string, message interface{}, fields map[string]string) errorResponse {
	return errorResponse{
		Error: errorBody{
			Message:    message,
			Code:       code,
			StatusCode: statusCode,
			Fields:     fields,
			Timestamp:  time.Now().UTC(),
		},
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var resp errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			resp = newErrorResponse(origErr.Code, "", origErr.Message, nil)
		case validator.ValidationErrors:
			fields := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fields[vErr.Field()] = vErr.Translate(translator)
			}
			resp = newErrorResponse(http.StatusBadRequest, codeValidation, "validation failed", fields)
		case *core.ValidationError:
			var fields map[string]string
			if origErr.Fields != nil {
				fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fields[fErr.Field] = fErr.Error
				}
			}
			msg := origErr.Error()
			if msg == "" {
				msg = "invalid input"
			}
			resp = newErrorResponse(http.StatusBadRequest, codeValidation, msg, fields)
		case *core.NotFoundError:
			resp = newErrorResponse(http.StatusNotFound, codeNotFound, origErr.Error(), nil)
		case *core.DatabaseError:
			// never leak the database failure; the log keeps the cause
			msg := http.StatusText(http.StatusInternalServerError)
			logger.Error(origErr.Error(), errors.Wrap(err, msg))
			resp = newErrorResponse(http.StatusInternalServerError, codeDatabase, msg, nil)
		default: // any other error is a server error
			msg := http.StatusText(http.StatusInternalServerError)
			logger.Error(msg, errors.Wrap(err, msg))
			resp = newErrorResponse(http.StatusInternalServerError, codeInternal, msg, nil)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(resp.Error.StatusCode)
			} else {
				err = ctx.JSON(resp.Error.StatusCode, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
