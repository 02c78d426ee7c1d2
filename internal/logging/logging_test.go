package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "json", &buf)
	require.NoError(t, err)

	logger.WithField("order_id", "o1").Info("order placed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "order placed", line["msg"])
	assert.Equal(t, "o1", line["order_id"])
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json", nil)
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	assert.Equal(t, log.StandardLogger(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger, err := New("info", "text", &buf)
	require.NoError(t, err)
	entry := logger.WithField("request_id", "r1")

	ctx := WithLogger(context.Background(), entry)
	FromContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=r1")
}
