package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/usuarios-api/pkg/logger"
)

func TestFromZerolog_EscribeJSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := logger.FromZerolog(zerolog.New(&buf))

	sub := l.With().Str("op", "create").Logger()
	sub.Warn().Str("step", "save-record").Msg("paso fallido")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "create", line["op"])
	assert.Equal(t, "save-record", line["step"])
	assert.Equal(t, "warn", line["level"])
}

func TestNop_NoEscribe(t *testing.T) {
	l := logger.Nop()
	assert.NotPanics(t, func() { l.Error().Msg("nada") })
}
