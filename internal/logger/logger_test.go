package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	log = New(Config{Level: "info", Format: "json"}, &buf)

	Info("test message", "booking_id", "booking-001")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, `"booking_id":"booking-001"`)
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	log = New(Config{Level: "info", Format: "json"}, &buf)

	Error("test error")

	assert.Contains(t, buf.String(), "test error")
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestDebugFilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	log = New(Config{Level: "info", Format: "json"}, &buf)

	Debug("hidden debug")
	assert.Empty(t, buf.String())

	log = New(Config{Level: "debug", Format: "json"}, &buf)
	Debug("test debug")
	assert.Contains(t, buf.String(), "test debug")
}

func TestInfof(t *testing.T) {
	var buf bytes.Buffer
	log = New(Config{Level: "info", Format: "console"}, &buf)

	Infof("test %s", "message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "INFO")
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	SetLogger(zap.New(core))

	Info("ignored")
	Warn("refresh failed", "reason", "401 Unauthorized")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "refresh failed", entries[0].Message)
		assert.Equal(t, "401 Unauthorized", entries[0].ContextMap()["reason"])
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}
