package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	apierrors "mockbank/internal/errors"
	"mockbank/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that formats errors as standardized
// error responses, logs them and counts them in api_errors_total
func NewHTTPErrorHandler(metrics services.MetricsRecorderInterface, logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "unknown"
		}

		var errorResponse *apierrors.ErrorResponse
		var httpStatus int

		var echoErr *echo.HTTPError
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &echoErr):
			errorResponse = apierrors.NewErrorResponse(
				mapHTTPStatusToErrorCode(echoErr.Code),
				traceID,
				apierrors.WithMessage(fmt.Sprintf("%v", echoErr.Message)),
			)
			httpStatus = echoErr.Code
		case errors.As(err, &validationErrs):
			details := make([]string, 0, len(validationErrs))
			for _, fieldErr := range validationErrs {
				details = append(details, fieldErr.Field()+" "+formatValidationError(fieldErr))
			}
			errorResponse = apierrors.NewValidationErrorFromList(details, traceID)
			if len(details) > 0 {
				errorResponse.Detail = details[0]
			}
			httpStatus = http.StatusBadRequest
		default:
			errorResponse, _ = apierrors.WrapSystemError(err, traceID)
			httpStatus = errorResponse.GetHTTPStatus()
		}

		logLevel := slog.LevelWarn
		if httpStatus >= 500 {
			logLevel = slog.LevelError
		}

		logger.Log(c.Request().Context(), logLevel, "HTTP error occurred",
			"trace_id", traceID,
			"error_code", errorResponse.Error.Code,
			"status", httpStatus,
			"message", errorResponse.Error.Message,
			"path", c.Request().URL.Path,
			"method", c.Request().Method,
			"error", err.Error(),
		)

		metrics.IncrementCounter(services.MetricAPIError, map[string]string{
			"code":   errorResponse.Error.Code,
			"status": strconv.Itoa(httpStatus),
		})

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpStatus)
		} else {
			err = c.JSON(httpStatus, errorResponse)
		}
		if err != nil {
			logger.Error("Failed to send error response",
				"trace_id", traceID,
				"error", err.Error(),
			)
		}
	}
}

// mapHTTPStatusToErrorCode maps HTTP status codes to error codes
func mapHTTPStatusToErrorCode(status int) apierrors.ErrorCode {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnprocessableEntity,
		http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apierrors.ValidationGeneral
	case http.StatusUnauthorized:
		return apierrors.AuthMissingToken
	case http.StatusForbidden:
		return apierrors.AuthInsufficientPermission
	case http.StatusNotFound:
		return apierrors.SystemNotFound
	case http.StatusTooManyRequests:
		return apierrors.SystemRateLimitExceeded
	case http.StatusServiceUnavailable:
		return apierrors.SystemServiceUnavailable
	default:
		return apierrors.SystemInternalError
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "account_id":
		return "must be a valid account id"
	case "transfer_mode":
		return "must be one of: sync async"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}
