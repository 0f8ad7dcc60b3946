package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type ErrorCode string

const (
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeRateLimit     ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	CodeParse         ErrorCode = "PARSE_ERROR"
	CodeEmptyInput    ErrorCode = "EMPTY_INPUT"
	CodeColumnMissing ErrorCode = "COLUMN_MISSING"
	CodeNonNumeric    ErrorCode = "NON_NUMERIC"
	CodeInvalidValue  ErrorCode = "INVALID_VALUE"
	CodeZeroTotal     ErrorCode = "ZERO_TOTAL"
	CodeRender        ErrorCode = "RENDER_ERROR"
)

type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns e with Details set, for chaining at the call site.
func (e *AppError) WithDetails(format string, args ...any) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Timestamp:  time.Now().UTC(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCode(code),
		Cause:      err,
		Timestamp:  time.Now().UTC(),
	}
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func ValidationWrap(err error, message string) *AppError {
	return Wrap(err, CodeValidation, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func RateLimit(message string) *AppError {
	return New(CodeRateLimit, message)
}

func FileNotFound(err error, path string) *AppError {
	return Wrap(err, CodeFileNotFound, fmt.Sprintf("input file %q not found", path))
}

func Parse(err error, path string) *AppError {
	return Wrap(err, CodeParse, fmt.Sprintf("cannot parse %q", path))
}

func EmptyInput(path string) *AppError {
	return New(CodeEmptyInput, fmt.Sprintf("%q has no data rows", path))
}

func ColumnMissing(path, column string) *AppError {
	return New(CodeColumnMissing, fmt.Sprintf("%q has no column %q", path, column))
}

func NonNumeric(err error, path string, row int, column, value string) *AppError {
	return Wrap(err, CodeNonNumeric, fmt.Sprintf("%q row %d column %q: %q is not a number", path, row, column, value))
}

func InvalidValue(path string, row int, column, reason string) *AppError {
	return New(CodeInvalidValue, fmt.Sprintf("%q row %d column %q: %s", path, row, column, reason))
}

func ZeroTotal(message string) *AppError {
	return New(CodeZeroTotal, message)
}

func Render(err error, path string) *AppError {
	return Wrap(err, CodeRender, fmt.Sprintf("cannot write chart %q", path))
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

func getStatusCode(code ErrorCode) int {
	switch code {
	case CodeValidation, CodeEmptyInput, CodeColumnMissing, CodeNonNumeric, CodeInvalidValue, CodeZeroTotal, CodeParse:
		return http.StatusUnprocessableEntity
	case CodeNotFound, CodeFileNotFound:
		return http.StatusNotFound
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ErrorResponse struct {
	Error   *AppError `json:"error"`
	Success bool      `json:"success"`
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error, requestID string) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		appErr = Internal("An unexpected error occurred")
		appErr.Cause = err
	}

	appErr.RequestID = requestID

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := ErrorResponse{
		Error:   appErr,
		Success: false,
	}

	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		logger.Error("failed to encode error response",
			"encode_error", encodeErr,
			"original_error", err,
			"request_id", requestID,
		)
		return
	}

	logLevel := slog.LevelError
	if appErr.StatusCode < 500 {
		logLevel = slog.LevelWarn
	}

	logger.Log(context.TODO(), logLevel, "request failed",
		"error_code", appErr.Code,
		"error_message", appErr.Message,
		"status_code", appErr.StatusCode,
		"request_id", requestID,
		"cause", appErr.Cause,
	)
}

type SuccessResponse struct {
	Data    any  `json:"data"`
	Success bool `json:"success"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := SuccessResponse{
		Data:    data,
		Success: true,
	}

	json.NewEncoder(w).Encode(response)
}

func WriteSuccessWithHeaders(w http.ResponseWriter, data any, headers map[string]string) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}
	WriteSuccess(w, data)
}
