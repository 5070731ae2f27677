package response

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every endpoint writes
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta describes one window of an offset-paged listing
type Meta struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

func NewMeta(limit, offset int, total int64) *Meta {
	return &Meta{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: int64(offset+limit) < total,
	}
}

// Error codes shared by handlers; clients branch on these rather than on messages
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeValidation     = "VALIDATION_FAILED"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
	CodeServiceFailure = "SERVICE_UNAVAILABLE"
)

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(w http.ResponseWriter, statusCode int, message string, data interface{}, meta *Meta) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// Fail writes an error envelope with an explicit code
func Fail(w http.ResponseWriter, statusCode int, code, message string, details interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Code:    code,
		Message: message,
		Error:   details,
	})
}

// Error writes an error envelope whose code is derived from the status
func Error(w http.ResponseWriter, statusCode int, message string, details interface{}) {
	Fail(w, statusCode, codeForStatus(statusCode), message, details)
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	Fail(w, http.StatusBadRequest, CodeValidation, "Validation failed", errors)
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, orDefault(message, "Bad request"), nil)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, orDefault(message, "Unauthorized"), nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, orDefault(message, "Forbidden"), nil)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, orDefault(message, "Resource not found"), nil)
}

func Conflict(w http.ResponseWriter, message string, details interface{}) {
	Error(w, http.StatusConflict, orDefault(message, "Conflict"), details)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, orDefault(message, "Internal server error"), nil)
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusServiceUnavailable:
		return CodeServiceFailure
	default:
		return CodeInternal
	}
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
