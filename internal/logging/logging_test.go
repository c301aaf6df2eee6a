package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(&buf, Options{Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)

	logger.Info().Str("quote_id", "Q-7").Msg("quote generated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Q-7", entry["quote_id"])
	assert.Contains(t, entry, "time")
}

func TestNew_DevDefaultsToHumanDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(&buf, Options{Dev: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)

	logger.Debug().Msg("loading catalog")
	assert.Contains(t, buf.String(), "loading catalog")
	assert.NotEqual(t, byte('{'), buf.Bytes()[0])
}

func TestNew_LevelFiltersOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, level, err := New(&buf, Options{Format: "json", Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	_, level, err := New(&buf, Options{Format: "json", Level: "loud"})
	require.Error(t, err)
	assert.Equal(t, zerolog.InfoLevel, level)
}
