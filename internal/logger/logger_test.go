package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeJSON(t *testing.T) {
	var buf bytes.Buffer
	InitializeWithWriter("debug", "json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l := GetForComponent("engine")
	l.Debug().Str("quote_id", "abc").Msg("quoted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "abc", entry["quote_id"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "quoted", entry["message"])
}

func TestInitializeLevels(t *testing.T) {
	var buf bytes.Buffer
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	InitializeWithWriter("WARN", "json", &buf)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	Get().Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	InitializeWithWriter("nonsense", "console", &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Get().Info().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}
