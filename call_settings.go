package completions

// CallSettings groups sampling parameters such as max tokens,
// temperature and penalties. It is a convenience struct for sharing
// settings across several CreateCompletionRequest values.
//
// CallSettings do not affect any requests automatically; callers are
// expected to apply them when constructing requests.
type CallSettings struct {
	// MaxTokens limits the number of tokens produced.
	MaxTokens *int `json:"max_tokens,omitempty" validate:"omitempty,gte=1"`
	// Temperature controls randomness of the output.
	Temperature *float64 `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	// TopP controls nucleus sampling for the output.
	TopP *float64 `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	// N is the number of completions to generate.
	N *int `json:"n,omitempty" validate:"omitempty,gte=1,lte=128"`
	// PresencePenalty penalizes tokens already present in the text.
	PresencePenalty *float64 `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	// FrequencyPenalty penalizes tokens by their frequency so far.
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	// Stop contains stop sequences that will truncate the output.
	Stop []string `json:"stop,omitempty"`
}

// NewCallSettings validates s and returns it. It returns an
// InvalidArgumentError for values that are clearly out of range, and
// ErrTooManyStopWords for stop lists longer than MaxStopWords.
//
// This helper is optional: callers can still construct CallSettings
// directly when they prefer not to perform validation.
func NewCallSettings(s CallSettings) (*CallSettings, error) {
	if err := checker().Struct(&s); err != nil {
		return nil, fieldError(err)
	}
	if len(s.Stop) > MaxStopWords {
		return nil, ErrTooManyStopWords
	}
	return &s, nil
}

// ApplyTo copies the non-nil fields of s into req. A single stop
// sequence is sent as a stop word, several as a stop list.
func (s *CallSettings) ApplyTo(req *CreateCompletionRequest) {
	if s == nil || req == nil {
		return
	}
	if s.MaxTokens != nil {
		req.MaxTokens = s.MaxTokens
	}
	if s.Temperature != nil {
		req.Temperature = s.Temperature
	}
	if s.TopP != nil {
		req.TopP = s.TopP
	}
	if s.N != nil {
		req.N = s.N
	}
	if s.PresencePenalty != nil {
		req.PresencePenalty = s.PresencePenalty
	}
	if s.FrequencyPenalty != nil {
		req.FrequencyPenalty = s.FrequencyPenalty
	}
	switch len(s.Stop) {
	case 0:
	case 1:
		req.Stop = StopWord(s.Stop[0])
	default:
		req.Stop = StopWordList(s.Stop...)
	}
}

// NewTextRequest builds a request for a single text prompt, applying
// settings when non-nil. A request without any stop sequence gets
// StopWordList() so the stop group still has exactly one variant and
// the wire body carries "stop":[].
func NewTextRequest(model, prompt string, settings *CallSettings) CreateCompletionRequest {
	req := CreateCompletionRequest{
		Model:  model,
		Prompt: TextPrompt(prompt),
		Stop:   StopWordList(),
	}
	settings.ApplyTo(&req)
	return req
}
