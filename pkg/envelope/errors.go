package envelope

import (
	"errors"
	"net/http"
)

// Error codes carried in Convention B replies.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeParse        = "PARSE_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Messages shown to dashboard users.
const (
	MsgParse    = "请求参数格式错误"
	MsgInternal = "服务器内部错误"
	MsgNoRoute  = "接口不存在"
)

// StatusCodeError is an error that knows its HTTP status and error code.
type StatusCodeError interface {
	error
	StatusCode() int
	Code() string
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return e.Field + " 参数错误"
	}
	return "参数错误"
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Code returns the machine readable error code.
func (e *ValidationError) Code() string { return CodeValidation }

// NotFoundError is returned when an id lookup misses.
// Resource is the display name, e.g. "用户".
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + "不存在" }

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Code returns the machine readable error code.
func (e *NotFoundError) Code() string { return CodeNotFound }

// ConflictError is returned when a unique field is already taken.
type ConflictError struct {
	Resource string
	Field    string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Field + "已存在"
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Code returns the machine readable error code.
func (e *ConflictError) Code() string { return CodeConflict }

// ParseError wraps a request body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return MsgParse }

func (e *ParseError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status code for this error.
func (e *ParseError) StatusCode() int { return http.StatusBadRequest }

// Code returns the machine readable error code.
func (e *ParseError) Code() string { return CodeParse }

// UnauthorizedError is returned when credentials are missing or invalid.
type UnauthorizedError struct {
	Message string
	// ErrCode overrides CodeUnauthorized, e.g. "OAUTH_FAILED".
	ErrCode string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "未登录"
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// Code returns the machine readable error code.
func (e *UnauthorizedError) Code() string {
	if e.ErrCode != "" {
		return e.ErrCode
	}
	return CodeUnauthorized
}

// FromError converts an error into a failed Reply. Errors implementing
// StatusCodeError keep their status and message; anything else becomes a
// generic 500.
func FromError(err error) *Reply {
	if err == nil {
		return OK(nil)
	}
	var sce StatusCodeError
	if errors.As(err, &sce) {
		return Fail(sce.StatusCode(), sce.Code(), sce.Error())
	}
	return Fail(http.StatusInternalServerError, CodeInternal, MsgInternal)
}
