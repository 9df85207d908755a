package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestIDKey struct{}

// WithRequestID 将请求ID写入上下文，供下游日志关联
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 读取上下文中的请求ID
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ctx 带请求ID的日志，直接调用 zap，抵消全局日志的 caller skip
func Ctx(ctx context.Context) *zap.Logger {
	l := Get().Logger.WithOptions(zap.AddCallerSkip(-1))
	if id := RequestID(ctx); id != "" {
		return l.With(zap.String("requestId", id))
	}
	return l
}
