package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf)

	log.Info(context.Background(), "hello", "kind", "memories")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "memories", rec["kind"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestWith_AddsPersistentFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf).With("component", "cache")

	log.Warn(context.Background(), "rollback")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cache", rec["component"])
}
