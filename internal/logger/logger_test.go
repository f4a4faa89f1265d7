package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormatUsesRenamedKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "debug", Format: "json", Output: &buf, ServiceName: "vidfeed-test"})

	l.WithField(FieldViewerID, "u-1").Info("ranked")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "ranked", line["message"])
	require.Equal(t, "info", line["level"])
	require.Equal(t, "vidfeed-test", line["service"])
	require.Equal(t, "u-1", line[FieldViewerID])
	require.Contains(t, line, "timestamp")
	require.True(t, strings.HasPrefix(line["file"].(string), "logger_test.go:"))
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "loud", Output: &buf})

	l.Debug("hidden")
	require.Zero(t, buf.Len())

	l.Info("shown")
	require.NotZero(t, buf.Len())
}

func TestContextFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	base := New(&Config{Level: "info", Format: "json", Output: &buf})

	ctx := base.WithContext(context.Background())
	ctx = SetRequestID(ctx, "req-1")
	ctx = SetViewerID(ctx, "anonymous")

	require.Equal(t, "req-1", GetRequestID(ctx))
	require.Equal(t, "anonymous", GetViewerID(ctx))

	With(Fields{FieldCount: 3}).Info(ctx, "done")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "req-1", line[FieldRequestID])
	require.EqualValues(t, 3, line[FieldCount])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	require.Same(t, GetDefault(), FromContext(context.Background()))
}

func TestEntry_FeedFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := New(&Config{Level: "debug", Format: "json", Output: &buf}).WithContext(context.Background())

	With(Fields{FieldCursor: true}).
		WithPass("social").
		WithPage(20, 87).
		WithCacheHit(false).
		WithDuration(12).
		Debug(ctx, "ranked")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, true, line[FieldCursor])
	require.Equal(t, "social", line[FieldPass])
	require.EqualValues(t, 20, line[FieldLimit])
	require.EqualValues(t, 87, line[FieldCandidates])
	require.Equal(t, false, line[FieldCacheHit])
	require.EqualValues(t, 12, line[FieldDurationMs])
}
