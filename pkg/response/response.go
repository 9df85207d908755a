package response

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	apperrors "github.com/gomenu/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// 业务码，4xx/5xx 直接作为 HTTP 状态码
const (
	CodeSuccess = 0
	CodeError   = 1
)

const MsgSuccess = "success"

// Success 成功响应
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(http.StatusOK).JSON(Response{
		Code:    CodeSuccess,
		Message: MsgSuccess,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *fiber.Ctx, code int, message string) error {
	status := http.StatusOK
	if code >= 400 && code < 600 {
		status = code
	}
	return c.Status(status).JSON(Response{
		Code:    code,
		Message: message,
	})
}

// FromError 根据错误类型生成响应
func FromError(c *fiber.Ctx, err error) error {
	return Error(c, apperrors.GetCode(err), apperrors.GetMessage(err))
}
