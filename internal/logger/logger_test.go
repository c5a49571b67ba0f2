package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCtxPrefersContextLogger(t *testing.T) {
	var buf bytes.Buffer
	contextLogger := zerolog.New(&buf)

	ctx := contextLogger.WithContext(context.Background())
	Ctx(ctx).Info().Msg("from-context")

	assert.Contains(t, buf.String(), "from-context", "上下文中的logger应被优先使用")
}

func TestCtxFallsBackToGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	original := Logger
	Logger = zerolog.New(&buf)
	t.Cleanup(func() { Logger = original })

	// 裸上下文没有logger，必须回落到全局实例而不是丢弃日志
	Ctx(context.Background()).Warn().Msg("degraded-path")

	assert.Contains(t, buf.String(), "degraded-path", "无上下文logger时应回落到全局实例")
}

func TestWithContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := Logger
	Logger = zerolog.New(&buf)
	t.Cleanup(func() { Logger = original })

	ctx := WithContext(context.Background())
	Ctx(ctx).Info().Msg("request-scoped")

	assert.Contains(t, buf.String(), "request-scoped")
}
