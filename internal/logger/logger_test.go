package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_WritesToFile(t *testing.T) {
	t.Cleanup(func() { Logger = zap.NewNop() })

	path := filepath.Join(t.TempDir(), "logs", "duelist.log")
	require.NoError(t, Init(false, path))

	Info("list loaded", zap.Int("items", 3))
	Error("save failed", errors.New("disk full"))
	Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "list loaded")
	assert.Contains(t, string(b), `"items":3`)
	assert.Contains(t, string(b), "disk full")
}

func TestInit_EmptyPathIsNop(t *testing.T) {
	t.Cleanup(func() { Logger = zap.NewNop() })

	require.NoError(t, Init(true, ""))
	assert.NotPanics(t, func() {
		Warn("nothing happens")
		Sync()
	})
}
