package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"portfolioinsight/pkg/advisor"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// errorRecorder is implemented by the request logging writer.
type errorRecorder interface {
	SetErrorMessage(message string)
}

// writeErrorResponse writes err with a status derived from its advisor error
// code. Plain errors use httpStatus as given.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var advErr *advisor.Error
	if errors.As(err, &advErr) {
		response.ErrorCode = string(advErr.Code)
		response.Message = advErr.Message
		httpStatus = mapErrorCodeToHTTPStatus(advErr.Code)
		response.Code = httpStatus
	}
	if r != nil {
		response.RequestID = middleware.GetReqID(r.Context())
	}
	if rec, ok := w.(errorRecorder); ok {
		rec.SetErrorMessage(err.Error())
	}

	writeJSON(w, httpStatus, response)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeErrorResponse(w, r, status, errors.New(message))
}

// mapErrorCodeToHTTPStatus maps advisor error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code advisor.ErrorCode) int {
	switch code {
	case advisor.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case advisor.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case advisor.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case advisor.ErrCodeUpstream:
		return http.StatusBadGateway
	case advisor.ErrCodeNotConfigured:
		return http.StatusServiceUnavailable
	case advisor.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
