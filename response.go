package completions

import "fmt"

// Finish reasons reported on a Choice.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// CreateCompletionResponse is the decoded body returned by the
// completions endpoint.
type CreateCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Text returns the text of the first choice, or "" when the response
// has no choices.
func (r *CreateCompletionResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

// Choice is one generated completion.
type Choice struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	// LogProbs is nil unless the request asked for log probabilities.
	LogProbs     *LogProbs `json:"logprobs"`
	FinishReason string    `json:"finish_reason"`
}

// LogProbs holds per-token log probability detail. All present
// sequences are parallel to Tokens.
//
// With echo set, the service has no probability for the first prompt
// token and reports null for it; that entry is a nil pointer in
// TokenLogProbs and a nil map in TopLogProbs.
type LogProbs struct {
	Tokens        []string             `json:"tokens"`
	TokenLogProbs []*float64           `json:"token_logprobs"`
	TopLogProbs   []map[string]float64 `json:"top_logprobs"`
	TextOffset    []int                `json:"text_offset"`
}

// Validate reports whether every non-nil sequence has one entry per
// token.
func (l *LogProbs) Validate() error {
	if l == nil {
		return nil
	}
	n := len(l.Tokens)
	check := func(name string, present bool, got int) error {
		if present && got != n {
			return fmt.Errorf("logprobs: %s has %d entries, want %d", name, got, n)
		}
		return nil
	}
	if err := check("token_logprobs", l.TokenLogProbs != nil, len(l.TokenLogProbs)); err != nil {
		return err
	}
	if err := check("top_logprobs", l.TopLogProbs != nil, len(l.TopLogProbs)); err != nil {
		return err
	}
	return check("text_offset", l.TextOffset != nil, len(l.TextOffset))
}

// Usage holds the token counters of a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
