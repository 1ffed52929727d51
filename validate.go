package completions

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	fieldChecker *validator.Validate
)

// checker returns the shared struct validator. Field names in its
// errors are the JSON wire names.
func checker() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		fieldChecker = v
	})
	return fieldChecker
}

// Validate checks the request before it is sent. It returns nil when
// the request may be dispatched, or the first problem found:
//
//   - ErrEmptyModel if Model is empty.
//   - ErrAmbiguousPrompt unless exactly one prompt variant is set.
//   - ErrAmbiguousStop unless exactly one stop variant is set.
//   - ErrTooManyStopWords if the stop list has more than MaxStopWords
//     entries.
//   - ErrStreamingUnsupported if Stream is set.
//   - *InvalidArgumentError for sampling parameters out of range.
//
// Every returned error matches ErrInvalidRequest with errors.Is.
// Validate performs no I/O and does not modify the request. A nil
// request is an *InvalidArgumentError.
func (r *CreateCompletionRequest) Validate() error {
	if r == nil {
		return &InvalidArgumentError{Parameter: "req", Value: nil, Message: "request must not be nil"}
	}
	if r.Model == "" {
		return ErrEmptyModel
	}
	if r.Prompt.variants() != 1 {
		return ErrAmbiguousPrompt
	}
	if err := r.Stop.validate(); err != nil {
		return err
	}
	if r.Stream {
		return ErrStreamingUnsupported
	}
	return r.validateParameters()
}

func (s StopWords) validate() error {
	if s.variants() != 1 {
		return ErrAmbiguousStop
	}
	if s.Word != nil {
		return nil
	}
	if len(s.Words) > MaxStopWords {
		return ErrTooManyStopWords
	}
	return nil
}

func (r *CreateCompletionRequest) validateParameters() error {
	if err := checker().Struct(r); err != nil {
		return fieldError(err)
	}
	if r.BestOf != nil && r.N != nil && *r.BestOf < *r.N {
		return &InvalidArgumentError{
			Parameter: "best_of",
			Value:     *r.BestOf,
			Message:   "must be greater than or equal to n",
		}
	}
	return nil
}

// fieldError converts the first validator failure into an
// InvalidArgumentError.
func fieldError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]

	param := fe.Field()
	// Map entries come back as logit_bias[50256].
	if i := strings.IndexByte(param, '['); i > 0 {
		param = param[:i]
	}

	var msg string
	switch fe.Tag() {
	case "gte":
		msg = "must be greater than or equal to " + fe.Param()
	case "lte":
		msg = "must be less than or equal to " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return &InvalidArgumentError{
		Parameter: param,
		Value:     fe.Value(),
		Message:   msg,
	}
}
