package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// 预定义错误
var (
	ErrUnauthorized = New(http.StatusUnauthorized, "未授权")
	ErrTokenMissing = New(http.StatusUnauthorized, "未提供认证令牌")
	ErrTokenInvalid = New(http.StatusUnauthorized, "无效的认证令牌")
	ErrForbidden    = New(http.StatusForbidden, "禁止访问")
	ErrInternal     = New(http.StatusInternalServerError, "服务器内部错误")
)

// AppError 应用错误，Code 与 HTTP 状态码一致
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同码同消息视为同一错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code && e.Message == t.Message
}

// New 创建错误
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装底层错误
func Wrap(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Is 检查是否为指定错误
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 类型转换错误
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode 获取错误码，非 AppError 视为 500
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// GetMessage 获取错误消息
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// NotFound 资源不存在
func NotFound(resource string) *AppError {
	return New(http.StatusNotFound, resource+"不存在")
}

// BadRequest 请求参数错误
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Validation 校验失败
func Validation(message string) *AppError {
	return New(http.StatusUnprocessableEntity, message)
}

// Duplicate 唯一字段冲突
func Duplicate(field string) *AppError {
	return New(http.StatusConflict, field+"已存在")
}
