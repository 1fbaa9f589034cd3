package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the failure envelope. It shares its shape with the
// success envelope so clients check one "success" flag.
type ErrorResponse struct {
	Success bool       `json:"success"`
	Error   ErrorBody  `json:"error"`
	Meta    *ErrorMeta `json:"meta,omitempty"`
}

// ErrorBody describes what went wrong
type ErrorBody struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorMeta carries request correlation
type ErrorMeta struct {
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler maps errors to HTTP responses and logs them
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates an error handler. In debug mode internal messages
// and stack traces reach the client.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetReqID(r.Context())

	appErr := GetAppError(err)
	if appErr == nil {
		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
		)
		message := "An internal error occurred"
		if h.debug {
			message = err.Error()
		}
		h.send(w, http.StatusInternalServerError, ErrorBody{
			Type:    string(ErrorTypeInternal),
			Code:    string(ErrorTypeInternal),
			Message: message,
		}, requestID)
		return
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	h.logError(r, appErr, status, requestID)

	body := ErrorBody{
		Type:    string(appErr.Type),
		Code:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if status >= 500 && !h.debug {
		body.Message = "An internal error occurred"
		body.Details = nil
	}
	if h.debug && appErr.StackTrace != "" {
		details := make(map[string]interface{}, len(body.Details)+1)
		for k, v := range body.Details {
			details[k] = v
		}
		details["stack_trace"] = appErr.StackTrace
		body.Details = details
	}
	h.send(w, status, body, requestID)
}

func (h *ErrorHandler) logError(r *http.Request, err *AppError, status int, requestID string) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", requestID),
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}

	if status >= 500 {
		h.logger.Error(err.Message, fields...)
		return
	}
	h.logger.Debug(err.Message, fields...)
}

func (h *ErrorHandler) send(w http.ResponseWriter, status int, body ErrorBody, requestID string) {
	response := ErrorResponse{Error: body}
	if requestID != "" {
		response.Meta = &ErrorMeta{RequestID: requestID}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// Middleware turns handler panics into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
