package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linksphinx/licensekit/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	attr := logger.RequestID("abc")
	require.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.Any())
	assert.True(t, logger.RequestID(nil).Equal(slog.Attr{}))
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value any
	}{
		{name: "component", attr: logger.Component("issuance"), key: "component", value: "issuance"},
		{name: "provider", attr: logger.Provider("stripe"), key: "provider", value: "stripe"},
		{name: "session id", attr: logger.SessionID("cs_123"), key: "session_id", value: "cs_123"},
		{name: "reason", attr: logger.Reason("sig"), key: "reason", value: "sig"},
		{name: "event type", attr: logger.EventType("checkout.session.completed"), key: "event_type", value: "checkout.session.completed"},
		{name: "duration", attr: logger.Duration(time.Second), key: "duration", value: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.Any())
		})
	}
}

func TestEmptyDomainAttrs(t *testing.T) {
	t.Parallel()

	assert.True(t, logger.Provider("").Equal(slog.Attr{}))
	assert.True(t, logger.SessionID("").Equal(slog.Attr{}))
}
