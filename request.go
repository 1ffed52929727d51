package completions

// CreateCompletionRequest is the body of a call to the completions
// endpoint. Optional parameters are pointers; nil values are left out
// of the wire body and the service default applies.
type CreateCompletionRequest struct {
	// Model is the model identifier, e.g. "gpt-3.5-turbo-instruct".
	Model string `json:"model"`
	// Prompt is the text or token input to complete.
	Prompt CompletionPrompt `json:"prompt"`
	// Suffix is appended after the inserted completion.
	Suffix string `json:"suffix,omitempty"`
	// MaxTokens limits the number of generated tokens.
	MaxTokens *int `json:"max_tokens,omitempty" validate:"omitempty,gte=1"`
	// Temperature controls randomness of the output.
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	// TopP controls nucleus sampling.
	TopP *float64 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	// N is the number of completions to return per prompt.
	N *int `json:"n,omitempty" validate:"omitempty,gte=1,lte=128"`
	// Stream asks for server-sent events. It is rejected by Validate.
	Stream bool `json:"stream,omitempty"`
	// LogProbs requests log probabilities for that many top tokens.
	LogProbs *int `json:"logprobs,omitempty" validate:"omitempty,gte=0,lte=5"`
	// Echo includes the prompt in the returned text.
	Echo bool `json:"echo,omitempty"`
	// Stop holds the sequences at which generation stops.
	Stop StopWords `json:"stop"`
	// PresencePenalty penalizes tokens already present in the text.
	PresencePenalty *float64 `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	// FrequencyPenalty penalizes tokens by their frequency so far.
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	// BestOf is the number of server-side candidates to pick from.
	BestOf *int `json:"best_of,omitempty" validate:"omitempty,gte=1,lte=20"`
	// LogitBias maps token ids to an additive bias in [-100, 100].
	LogitBias map[int]int `json:"logit_bias,omitempty" validate:"omitempty,dive,gte=-100,lte=100"`
	// User identifies the end user to the service.
	User string `json:"user,omitempty"`
}
