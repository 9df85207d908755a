package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gomenu/pkg/auth"
	apperrors "github.com/gomenu/pkg/errors"
	"github.com/gomenu/pkg/logger"
	"github.com/gomenu/pkg/metric"
	"github.com/gomenu/pkg/response"
	"github.com/gomenu/pkg/utils"
	"go.uber.org/zap"
)

// JWTAuth JWT认证中间件
func JWTAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return response.FromError(c, apperrors.ErrTokenMissing)
		}

		token = strings.TrimPrefix(token, "Bearer ")

		claims, err := jwtManager.ParseToken(token)
		if err != nil {
			return response.FromError(c, apperrors.ErrTokenInvalid)
		}

		c.Locals("userId", claims.UserID)
		c.Locals("username", claims.Username)
		c.Locals("claims", claims)

		return c.Next()
	}
}

// RequireRole 角色校验中间件，需在 JWTAuth 之后使用
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, _ := c.Locals("claims").(*auth.Claims)
		if claims == nil || !claims.HasRole(role) {
			return response.FromError(c, apperrors.ErrForbidden)
		}
		return c.Next()
	}
}

// Recovery 恢复中间件
func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("error", r),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
				)
				err = response.FromError(c, apperrors.ErrInternal)
			}
		}()
		return c.Next()
	}
}

// RequestID 请求ID中间件
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(fiber.HeaderXRequestID)
		if requestID == "" {
			requestID = utils.UUID()
		}
		c.Locals("requestId", requestID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), requestID))
		c.Set(fiber.HeaderXRequestID, requestID)
		return c.Next()
	}
}

// AccessLog 访问日志中间件
func AccessLog(skipPaths ...string) fiber.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		if _, ok := skip[c.Path()]; ok {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		logger.Info("http request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", GetRequestID(c)),
		)
		return err
	}
}

// Metrics 请求耗时统计中间件，按路由模板打标签
func Metrics(requests metric.IncrementalCounter, latency metric.Observer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		requests.Increment(c.Method(), route, status)
		latency.Observe(time.Since(start).Seconds(), c.Method(), route)
		return err
	}
}

// ErrorHandler fiber 统一错误处理
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return response.Error(c, fe.Code, fe.Message)
	}
	if code := apperrors.GetCode(err); code >= 500 {
		logger.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
		return response.Error(c, code, apperrors.ErrInternal.Message)
	}
	return response.FromError(c, err)
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("userId").(int64)
	return userID
}

// GetUsername 从上下文获取用户名
func GetUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

// GetRequestID 从上下文获取请求ID
func GetRequestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestId").(string)
	return id
}
