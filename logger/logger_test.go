package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flames.log")
	log, err := New(Options{Level: "info", JSON: true, Path: path, MaxSize: 1})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("prediction", zap.Int("label", 1))
	_ = log.Sync()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"prediction"`)
	assert.Contains(t, string(content), `"label":1`)
	assert.NotContains(t, string(content), "hidden")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
