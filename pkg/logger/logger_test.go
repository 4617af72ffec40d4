package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestFieldsToZapFields(t *testing.T) {
	fields := fieldsToZapFields("announcement_id", int64(7), errors.New("boom"), "dangling")

	assert.Len(t, fields, 2)
	assert.Equal(t, "announcement_id", fields[0].Key)
	assert.Equal(t, "error", fields[1].Key)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
