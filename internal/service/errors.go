package service

import (
	"errors"
	"net/http"
)

// StatusError 业务错误，带 HTTP 状态码。处理器据此决定响应码，
// 未包装的错误一律按 500 处理并只返回通用消息。
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// ErrValidation 构造 400 错误
func ErrValidation(msg string) error {
	return &StatusError{Status: http.StatusBadRequest, Message: msg}
}

// ErrUnauthorized 构造 401 错误
func ErrUnauthorized(msg string) error {
	return &StatusError{Status: http.StatusUnauthorized, Message: msg}
}

// ErrNotFound 构造 404 错误
func ErrNotFound(msg string) error {
	return &StatusError{Status: http.StatusNotFound, Message: msg}
}

// ErrConflict 构造 409 错误
func ErrConflict(msg string) error {
	return &StatusError{Status: http.StatusConflict, Message: msg}
}

// HTTPStatus 提取错误对应的状态码与对外消息
func HTTPStatus(err error) (int, string) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, se.Message
	}
	return http.StatusInternalServerError, "An internal error occurred."
}
