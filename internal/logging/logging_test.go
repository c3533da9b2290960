package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLine(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("WIB", 7*60*60)
	log := New(&buf, "debug", loc)

	log.WithFields(logrus.Fields{"document_id": 7, "component": "store"}).Warn("relocation cleanup failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "relocation cleanup failed", entry["msg"])
	assert.Equal(t, float64(7), entry["document_id"])
	assert.Equal(t, "store", entry["component"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	require.NoError(t, err)
	_, offset := parsed.Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", nil)
	log.Info("hidden")
	assert.Zero(t, buf.Len())

	fallback := New(&buf, "shouting", nil)
	assert.Equal(t, logrus.InfoLevel, fallback.GetLevel())
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().WithField("k", "v").Error("dropped")
	})
}
