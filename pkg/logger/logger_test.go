package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldsAreMergedAndSorted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	defer Set(nil)

	Warn("render: image load failed", Fields{"item": "A1"}, WithError(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "render: image load failed", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "A1", ctx["item"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "error", entries[0].Context[0].Key)
}

func TestWithNilError(t *testing.T) {
	assert.Empty(t, WithError(nil))
}
