package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"willvault/core/types"
	"willvault/observability"
)

func TestLoggingEmitterWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	emitter := observability.NewLoggingEmitter(logger)

	emitter.Emit(&types.Event{Type: "will.created", Attributes: map[string]string{"willId": "1"}})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "will.created", decoded["event"])
	require.Equal(t, "1", decoded["willId"])
}

func TestMetricsEmitterIgnoresNilEvent(t *testing.T) {
	emitter := observability.NewMetricsEmitter()
	require.NotPanics(t, func() { emitter.Emit(nil) })
	require.NotPanics(t, func() {
		emitter.Emit(&types.Event{Type: "will.created", Attributes: map[string]string{}})
	})
}
