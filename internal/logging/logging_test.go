package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "WARN")
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"time":`)
}

func TestNewWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, NewWithWriter(&bytes.Buffer{}, "loud").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewWithWriter(&bytes.Buffer{}, "").GetLevel())
}

func TestNewWithWriter_LeavesTimeFormatAlone(t *testing.T) {
	assert.Equal(t, timeFormat, zerolog.TimeFieldFormat)

	prev := zerolog.TimeFieldFormat
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	t.Cleanup(func() { zerolog.TimeFieldFormat = prev })

	NewWithWriter(&bytes.Buffer{}, "info")
	assert.Equal(t, zerolog.TimeFormatUnix, zerolog.TimeFieldFormat)
}
