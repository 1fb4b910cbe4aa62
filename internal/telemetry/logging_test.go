package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/clue/log"
)

func TestSetupLogging_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scriptroom.log")

	ctx, closeFn, err := SetupLogging(context.Background(), LogConfig{Format: "json", File: path})
	require.NoError(t, err)
	log.Print(ctx, log.KV{K: "msg", V: "hello journal"})
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello journal")
}

func TestSetupLogging_UnknownFormat(t *testing.T) {
	_, closeFn, err := SetupLogging(context.Background(), LogConfig{Format: "xml"})
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}
