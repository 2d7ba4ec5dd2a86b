package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "binance-trader", line["app"])
	assert.Equal(t, "v", line["k"])
	assert.Contains(t, line, "time")
}

func TestNewUnknownLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "loud")

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestErrorStack(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Error().Stack().Err(errors.New("boom")).Msg("failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["error"])
	assert.NotEmpty(t, line["stack"])
}

func TestStackMarshalerInstalled(t *testing.T) {
	require.NotNil(t, zerolog.ErrorStackMarshaler)

	plain := zerolog.ErrorStackMarshaler(errors.New("plain"))
	assert.NotEmpty(t, plain)

	traced := zerolog.ErrorStackMarshaler(pkgerrors.New("traced"))
	assert.NotEmpty(t, traced)
}
