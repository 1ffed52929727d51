package completions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionPrompt_MarshalsActiveVariant(t *testing.T) {
	tests := []struct {
		name   string
		prompt CompletionPrompt
		want   string
	}{
		{"text", TextPrompt("Hello"), `"Hello"`},
		{"texts", TextsPrompt("a", "b"), `["a","b"]`},
		{"tokens", TokensPrompt(1, 2, 3), `[1,2,3]`},
		{"token lists", TokenListsPrompt([]int{1}, []int{2, 3}), `[[1],[2,3]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.prompt)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestCompletionPrompt_MarshalRejectsAmbiguous(t *testing.T) {
	_, err := json.Marshal(CompletionPrompt{})
	assert.ErrorIs(t, err, ErrAmbiguousPrompt)

	_, err = json.Marshal(CompletionPrompt{Text: strPtr("a"), Tokens: []int{1}})
	assert.ErrorIs(t, err, ErrAmbiguousPrompt)
}

func TestCompletionPrompt_UnmarshalRecognisesShapes(t *testing.T) {
	var p CompletionPrompt

	require.NoError(t, json.Unmarshal([]byte(`"Hello"`), &p))
	assert.Equal(t, TextPrompt("Hello"), p)

	require.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &p))
	assert.Equal(t, TextsPrompt("a", "b"), p)

	require.NoError(t, json.Unmarshal([]byte(`[1, -2]`), &p))
	assert.Equal(t, TokensPrompt(1, -2), p)

	require.NoError(t, json.Unmarshal([]byte(`[[1], [2, 3]]`), &p))
	assert.Equal(t, TokenListsPrompt([]int{1}, []int{2, 3}), p)

	require.NoError(t, json.Unmarshal([]byte(`[]`), &p))
	assert.Equal(t, 1, p.variants())

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, 0, p.variants())

	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
	assert.Error(t, json.Unmarshal([]byte(`["a", 1]`), &p))
}

func TestCompletionPrompt_UnmarshalRejectsNullElements(t *testing.T) {
	bodies := []string{
		`[null, 5]`,
		`[5, null]`,
		`["a", null]`,
		`[[1], null]`,
		`[[1, null]]`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			var p CompletionPrompt
			err := json.Unmarshal([]byte(body), &p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "null")
		})
	}

	var s StopWords
	assert.Error(t, json.Unmarshal([]byte(`["a", null]`), &s))
	require.NoError(t, json.Unmarshal([]byte(`[]`), &s))
	assert.Equal(t, StopWordList(), s)
}

func TestStopWords_JSON(t *testing.T) {
	b, err := json.Marshal(StopWord("."))
	require.NoError(t, err)
	assert.JSONEq(t, `"."`, string(b))

	b, err = json.Marshal(StopWordList("\n", "END"))
	require.NoError(t, err)
	assert.JSONEq(t, `["\n","END"]`, string(b))

	_, err = json.Marshal(StopWords{})
	assert.ErrorIs(t, err, ErrAmbiguousStop)

	var s StopWords
	require.NoError(t, json.Unmarshal([]byte(`"."`), &s))
	assert.Equal(t, StopWord("."), s)

	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &s))
	assert.Equal(t, StopWordList("a", "b"), s)
}

func TestCreateCompletionRequest_DecodeThenValidate(t *testing.T) {
	body := `{
		"model": "gpt-3.5-turbo-instruct",
		"prompt": ["one", "two"],
		"max_tokens": 16,
		"temperature": 0,
		"stop": ["\n"],
		"logit_bias": {"50256": -100}
	}`
	var req CreateCompletionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, []string{"one", "two"}, req.Prompt.Texts)
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.0, *req.Temperature)
	assert.Equal(t, map[int]int{50256: -100}, req.LogitBias)
	assert.NoError(t, req.Validate())
}
