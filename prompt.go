package completions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxStopWords is the largest stop list the completions endpoint accepts.
const MaxStopWords = 4

// CompletionPrompt is the prompt of a completion request. Exactly one of
// its fields must be set; use the TextPrompt, TextsPrompt, TokensPrompt
// or TokenListsPrompt constructors to build a valid value.
//
// A variant counts as set when it is non-nil, so an empty non-nil slice
// is still a (possibly useless) choice.
type CompletionPrompt struct {
	// Text is a single prompt string.
	Text *string
	// Texts is a batch of prompt strings.
	Texts []string
	// Tokens is a single prompt given as token ids.
	Tokens []int
	// TokenLists is a batch of prompts given as token ids.
	TokenLists [][]int
}

// TextPrompt returns a prompt holding a single string.
func TextPrompt(text string) CompletionPrompt {
	return CompletionPrompt{Text: &text}
}

// TextsPrompt returns a prompt holding a batch of strings.
func TextsPrompt(texts ...string) CompletionPrompt {
	if texts == nil {
		texts = []string{}
	}
	return CompletionPrompt{Texts: texts}
}

// TokensPrompt returns a prompt holding one tokenized prompt.
func TokensPrompt(tokens ...int) CompletionPrompt {
	if tokens == nil {
		tokens = []int{}
	}
	return CompletionPrompt{Tokens: tokens}
}

// TokenListsPrompt returns a prompt holding a batch of tokenized prompts.
func TokenListsPrompt(lists ...[]int) CompletionPrompt {
	if lists == nil {
		lists = [][]int{}
	}
	return CompletionPrompt{TokenLists: lists}
}

// variants reports how many prompt shapes are set.
func (p CompletionPrompt) variants() int {
	n := 0
	if p.Text != nil {
		n++
	}
	if p.Texts != nil {
		n++
	}
	if p.Tokens != nil {
		n++
	}
	if p.TokenLists != nil {
		n++
	}
	return n
}

// value returns the single populated variant.
func (p CompletionPrompt) value() (any, error) {
	if p.variants() != 1 {
		return nil, ErrAmbiguousPrompt
	}
	switch {
	case p.Text != nil:
		return *p.Text, nil
	case p.Texts != nil:
		return p.Texts, nil
	case p.Tokens != nil:
		return p.Tokens, nil
	default:
		return p.TokenLists, nil
	}
}

// MarshalJSON encodes the populated variant as the bare `prompt` value
// (string, string array, token array or array of token arrays).
func (p CompletionPrompt) MarshalJSON() ([]byte, error) {
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON accepts each of the four wire shapes of `prompt`.
func (p *CompletionPrompt) UnmarshalJSON(data []byte) error {
	*p = CompletionPrompt{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Text = &s
		return nil
	case '[':
	default:
		return fmt.Errorf("completions: prompt must be a string or an array, got %.20s", data)
	}

	var raw []json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		p.Texts = []string{}
		return nil
	}

	first := bytes.TrimSpace(raw[0])
	if len(first) == 0 {
		return errors.New("completions: empty prompt element")
	}
	switch first[0] {
	case '"':
		var texts []*string
		if err := json.Unmarshal(data, &texts); err != nil {
			return err
		}
		p.Texts, err = derefElements(texts, "prompt")
		return err
	case '[':
		var lists [][]*int
		if err := json.Unmarshal(data, &lists); err != nil {
			return err
		}
		out := make([][]int, len(lists))
		for i, list := range lists {
			if list == nil {
				return fmt.Errorf("completions: prompt[%d] must be a token array, got null", i)
			}
			if out[i], err = derefElements(list, fmt.Sprintf("prompt[%d]", i)); err != nil {
				return err
			}
		}
		p.TokenLists = out
		return nil
	default:
		var tokens []*int
		if err := json.Unmarshal(data, &tokens); err != nil {
			return err
		}
		p.Tokens, err = derefElements(tokens, "prompt")
		return err
	}
}

// derefElements rejects null array elements, which encoding/json would
// otherwise decode as zero values.
func derefElements[T any](in []*T, field string) ([]T, error) {
	out := make([]T, len(in))
	for i, v := range in {
		if v == nil {
			return nil, fmt.Errorf("completions: %s[%d] must not be null", field, i)
		}
		out[i] = *v
	}
	return out, nil
}

// StopWords holds the stop sequences of a request. Exactly one of Word
// or Words must be set.
type StopWords struct {
	// Word is a single stop sequence.
	Word *string
	// Words is a list of at most MaxStopWords stop sequences.
	Words []string
}

// StopWord returns StopWords holding a single sequence.
func StopWord(word string) StopWords {
	return StopWords{Word: &word}
}

// StopWordList returns StopWords holding a list of sequences.
func StopWordList(words ...string) StopWords {
	if words == nil {
		words = []string{}
	}
	return StopWords{Words: words}
}

func (s StopWords) variants() int {
	n := 0
	if s.Word != nil {
		n++
	}
	if s.Words != nil {
		n++
	}
	return n
}

// MarshalJSON encodes the populated variant as the bare `stop` value.
func (s StopWords) MarshalJSON() ([]byte, error) {
	if s.variants() != 1 {
		return nil, ErrAmbiguousStop
	}
	if s.Word != nil {
		return json.Marshal(*s.Word)
	}
	return json.Marshal(s.Words)
}

// UnmarshalJSON accepts a string or a string array.
func (s *StopWords) UnmarshalJSON(data []byte) error {
	*s = StopWords{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var w string
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		s.Word = &w
		return nil
	}
	var words []*string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	if words == nil {
		words = []*string{}
	}
	out, err := derefElements(words, "stop")
	if err != nil {
		return err
	}
	s.Words = out
	return nil
}
