package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(NewLoggerConfig(false, WithLevel("loud")))
	assert.Error(t, err)
}

func TestNewLogger_WritesSanitizedJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediator.log")
	l, err := NewLogger(NewLoggerConfig(true,
		WithServiceName("nhwr-mediator"),
		WithEnvironment("production"),
		WithFile(path),
	))
	require.NoError(t, err)

	l.Info("Received updated config", l.Any("config", map[string]any{
		"nhwr": map[string]any{"url": "http://registry", "password": "hunter2"},
	}))
	l.Debug("below the production level")
	b := blame.DownstreamConfigMissing("nhwr", errors.New("missing url"))
	l.Error(b.FetchMessage(), Blame(b))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `"msg":"Received updated config"`)
	assert.Contains(t, out, `"service":"nhwr-mediator"`)
	assert.Contains(t, out, "http://registry")
	assert.Contains(t, out, "****")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "below the production level")
	assert.Contains(t, out, string(blame.ErrorDownstreamConfigMissing))
}

func TestWith_KeepsSanitizer(t *testing.T) {
	l := NewNopLogger().With(String("urn", "urn:mediator:test"))
	field := l.Any("headers", map[string]string{"Authorization": "Basic abc"})

	masked, ok := field.Interface.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "****", masked["Authorization"])
}
