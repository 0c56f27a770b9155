package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Writer: &buf, Environment: tt.environment}).Info("library opened", "library_id", "lib-1")

			var decoded map[string]any
			isJSON := json.Unmarshal(buf.Bytes(), &decoded) == nil
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
			assert.Contains(t, buf.String(), "lib-1")
		})
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelDebug})

	log.WithLibrary("lib-1").Debug("library items listed", "total", 3)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "DEBUG", decoded["level"])
	assert.Equal(t, "library items listed", decoded["msg"])
	assert.Equal(t, "lib-1", decoded["library_id"])
	assert.Equal(t, float64(3), decoded["total"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"trace":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	r := slog.NewRecord(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC), slog.LevelWarn, "slow shelf", 0)
	r.AddAttrs(
		slog.String("shelf", "continue-series"),
		slog.String("title", "The Hobbit"),
		slog.Duration("duration", 1500*time.Microsecond),
	)
	require.NoError(t, h.Handle(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "15:04:05")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "slow shelf")
	assert.Contains(t, out, "shelf=continue-series")
	assert.Contains(t, out, `title="The Hobbit"`)
	assert.Contains(t, out, "duration=1.5ms")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	h = NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestPrettyHandler_GroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.With("library_id", "lib-1").WithGroup("query").Info("listed",
		"filter", "genres",
		slog.Group("page", slog.Int("limit", 20), slog.Int("page", 0)),
	)

	out := buf.String()
	assert.Contains(t, out, "library_id=lib-1")
	assert.Contains(t, out, "query.filter=genres")
	assert.Contains(t, out, "query.page.limit=20")
	assert.Contains(t, out, "query.page.page=0")
}

func TestPrettyHandler_WithAttrsDoesNotShare(t *testing.T) {
	var buf bytes.Buffer
	base := NewPrettyHandler(&buf, nil)
	a := base.WithAttrs([]slog.Attr{slog.String("shelf", "discover")})
	_ = base.WithAttrs([]slog.Attr{slog.String("shelf", "recent-series")})

	require.NoError(t, a.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "built", 0)))
	assert.Contains(t, buf.String(), "shelf=discover")
	assert.NotContains(t, buf.String(), "recent-series")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"a=b"`, formatValue(slog.StringValue("a=b")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
	assert.Equal(t, "2026-01-02T15:04:05Z", formatValue(slog.TimeValue(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errors.New("database is locked")).
		WithFields(map[string]any{"shelf": "discover", "attempt": 2}).
		WithField("user_id", "u1").
		Error("shelf failed")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "database is locked", decoded["error"])
	assert.Equal(t, "discover", decoded["shelf"])
	assert.Equal(t, float64(2), decoded["attempt"])
	assert.Equal(t, "u1", decoded["user_id"])
}
