package completions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCallSettings_Validates(t *testing.T) {
	_, err := NewCallSettings(CallSettings{Temperature: float64Ptr(3)})
	var argErr *InvalidArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "temperature", argErr.Parameter)
	assert.Equal(t, 3.0, argErr.Value)

	_, err = NewCallSettings(CallSettings{Stop: []string{"a", "b", "c", "d", "e"}})
	assert.ErrorIs(t, err, ErrTooManyStopWords)

	cs, err := NewCallSettings(CallSettings{MaxTokens: intPtr(32), TopP: float64Ptr(0.9)})
	require.NoError(t, err)
	assert.Equal(t, 32, *cs.MaxTokens)
}

func TestCallSettings_ApplyTo(t *testing.T) {
	cs := &CallSettings{
		MaxTokens:   intPtr(64),
		Temperature: float64Ptr(0.2),
		Stop:        []string{"\n"},
	}
	req := NewTextRequest("gpt-3.5-turbo-instruct", "Say hi", cs)

	assert.Equal(t, "gpt-3.5-turbo-instruct", req.Model)
	assert.Equal(t, TextPrompt("Say hi"), req.Prompt)
	assert.Equal(t, 64, *req.MaxTokens)
	assert.Equal(t, 0.2, *req.Temperature)
	assert.Nil(t, req.TopP)
	assert.Equal(t, StopWord("\n"), req.Stop)
	assert.NoError(t, req.Validate())

	cs.Stop = []string{"\n", "END"}
	cs.ApplyTo(&req)
	assert.Equal(t, StopWordList("\n", "END"), req.Stop)
}

func TestNewTextRequest_WithoutSettings(t *testing.T) {
	req := NewTextRequest("m", "p", nil)
	assert.Nil(t, req.MaxTokens)
	assert.Equal(t, StopWordList(), req.Stop)
	assert.NoError(t, req.Validate())
}
