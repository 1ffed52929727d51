package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"

	"github.com/ncecere/completions"
	"github.com/ncecere/completions/registry"
)

// Keys shared by flags and the config file.
const (
	keyModel            = "model"
	keyMaxTokens        = "max-tokens"
	keyTemperature      = "temperature"
	keyTopP             = "top-p"
	keyN                = "n"
	keyStop             = "stop"
	keySuffix           = "suffix"
	keyEcho             = "echo"
	keyLogProbs         = "logprobs"
	keyPresencePenalty  = "presence-penalty"
	keyFrequencyPenalty = "frequency-penalty"
	keyBestOf           = "best-of"
	keyUser             = "user"
	keyTokens           = "tokens"
)

// buildRequest turns the merged flag and config values into a request.
// The prompt is taken from --tokens, the positional arguments, or stdin,
// in that order.
func buildRequest(v *viper.Viper, reg registry.Registry, args []string, stdin io.Reader) (*completions.CreateCompletionRequest, error) {
	req := &completions.CreateCompletionRequest{
		Model:  registry.ResolveOrSelf(reg, v.GetString(keyModel)),
		Suffix: v.GetString(keySuffix),
		Echo:   v.GetBool(keyEcho),
		User:   v.GetString(keyUser),
	}

	switch {
	case v.IsSet(keyTokens):
		tokens := v.GetIntSlice(keyTokens)
		req.Prompt = completions.TokensPrompt(tokens...)
	case len(args) > 0:
		req.Prompt = completions.TextPrompt(strings.Join(args, " "))
	case stdin != nil:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read prompt from stdin: %w", err)
		}
		req.Prompt = completions.TextPrompt(strings.TrimRight(string(b), "\n"))
	default:
		return nil, fmt.Errorf("no prompt given")
	}

	settings := completions.CallSettings{
		MaxTokens:        intIfSet(v, keyMaxTokens),
		Temperature:      floatIfSet(v, keyTemperature),
		TopP:             floatIfSet(v, keyTopP),
		N:                intIfSet(v, keyN),
		PresencePenalty:  floatIfSet(v, keyPresencePenalty),
		FrequencyPenalty: floatIfSet(v, keyFrequencyPenalty),
		Stop:             v.GetStringSlice(keyStop),
	}
	cs, err := completions.NewCallSettings(settings)
	if err != nil {
		return nil, err
	}
	req.Stop = completions.StopWordList()
	cs.ApplyTo(req)

	req.LogProbs = intIfSet(v, keyLogProbs)
	req.BestOf = intIfSet(v, keyBestOf)
	return req, nil
}

// promptMissing reports whether no prompt source is available. An
// interactive stdin does not count as one.
func promptMissing(v *viper.Viper, args []string, interactive bool) bool {
	return len(args) == 0 && !v.IsSet(keyTokens) && interactive
}

func intIfSet(v *viper.Viper, key string) *int {
	if !v.IsSet(key) {
		return nil
	}
	n := v.GetInt(key)
	return &n
}

func floatIfSet(v *viper.Viper, key string) *float64 {
	if !v.IsSet(key) {
		return nil
	}
	f := v.GetFloat64(key)
	return &f
}
